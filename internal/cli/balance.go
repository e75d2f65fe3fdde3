package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/balance"
	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
)

// BalanceOptions holds flags for the balance command.
type BalanceOptions struct {
	*RootOptions
	PopulationFlags
	Count int
	Seed  uint64
}

// BalanceResult is a balance report with its headline numbers.
type BalanceResult struct {
	Source string          `json:"source"`
	Spread int             `json:"spread"`
	Report *balance.Report `json:"report"`
}

func (r BalanceResult) writeText(w io.Writer) {
	rep := r.Report
	fmt.Fprintf(w, "%s: %d sequence(s), %d-%d steps\n", r.Source, rep.Sequences, rep.MinLength, rep.MaxLength)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "step totals:")
	for _, step := range rep.Steps() {
		fmt.Fprintf(w, "  %-24s %d\n", step, rep.Totals[step])
	}
	fmt.Fprintf(w, "spread: %d\n", r.Spread)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "blocks:")
	for _, path := range rep.Paths() {
		fmt.Fprintf(w, "  %-24s %d sequence(s), spread %d\n", path, rep.Blocks[path], rep.BlockSpread(path))
	}
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BalanceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "balance [study]",
		Short: "Report how evenly a population covers each step",
		Long: `Analyze a population: total occurrences of each step, the spread
between the most and least frequent steps, sequence lengths and how many
sequences contain each block.

With --db a stored population is analyzed. Given a study instead, a
population is generated in memory first.

Examples:
  studyseq balance --db ./study.db
  studyseq balance study.cue --seed 7 -n 500`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(opts, args, cmd)
		},
	}

	addPopulationFlags(cmd, &opts.PopulationFlags, false)
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "number of sequences to generate (default: the study's numSequences)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for the generated population")

	return cmd
}

func runBalance(opts *BalanceOptions, args []string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var (
		seqs   []*ir.Sequence
		source string
	)
	switch {
	case opts.Database != "":
		st, pop, err := openPopulation(ctx, opts.Database, opts.Population)
		if err != nil {
			return failExit(formatter, err)
		}
		defer st.Close()
		if seqs, err = st.LoadPopulation(ctx, pop.ID); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		source = "population " + pop.ID
	case len(args) == 1:
		cfg, err := LoadStudy(args[0])
		if err != nil {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
			}
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		genOpts := []sequence.Option{sequence.WithLogger(slog.Default())}
		if cmd.Flags().Changed("seed") {
			genOpts = append(genOpts, sequence.WithSeed(opts.Seed))
		}
		if cmd.Flags().Changed("count") {
			genOpts = append(genOpts, sequence.WithCount(opts.Count))
		}
		if seqs, err = sequence.Generate(cfg, genOpts...); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneration, err.Error(), nil)
		}
		source = args[0]
	default:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "a study path or --db is required", nil)
	}

	report := balance.Analyze(seqs)
	return formatter.Success(BalanceResult{
		Source: source,
		Spread: report.Spread(),
		Report: report,
	})
}
