package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// SubseqOptions holds flags for the subseq command.
type SubseqOptions struct {
	*RootOptions
	PopulationFlags
}

// SubseqResult is the block found at a path of a stored sequence.
type SubseqResult struct {
	Path      string       `json:"path"`
	OrderPath string       `json:"order_path"`
	Order     ir.OrderKind `json:"order"`
	Steps     []string     `json:"steps"`
	Block     *ir.Sequence `json:"block"`
}

func (r SubseqResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s (%s, %d steps)\n", r.OrderPath, r.Order, len(r.Steps))
	fmt.Fprintf(w, "  %s\n", strings.Join(r.Steps, " "))
}

// NewSubseqCommand creates the subseq command.
func NewSubseqCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubseqOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "subseq <path>",
		Short: "Show the block at a path of a stored sequence",
		Long: `Resolve a block path such as "root-1-0" inside one participant's
sequence. Each segment after "root" is a component index into the
participant's resolved sequence.

Examples:
  studyseq subseq root-1 --db ./study.db --index 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubseq(opts, args[0], cmd)
		},
	}

	addPopulationFlags(cmd, &opts.PopulationFlags, true)
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSubseq(opts *SubseqOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	seq, _, err := loadStoredSequence(commandContext(cmd), &opts.PopulationFlags)
	if err != nil {
		return failExit(formatter, err)
	}

	block, err := sequence.SubSequence(seq, path)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeBadPath, err.Error(), nil)
	}

	return formatter.Success(SubseqResult{
		Path:      path,
		OrderPath: block.OrderPath,
		Order:     block.Order,
		Steps:     sequence.FlatMap(block),
		Block:     block,
	})
}
