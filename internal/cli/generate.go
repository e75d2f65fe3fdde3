package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/balance"
	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/metrics"
	"github.com/roach88/studyseq/internal/sequence"
	"github.com/roach88/studyseq/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Database    string
	Count       int
	Seed        uint64
	Output      string
	MetricsFile string
}

// GenerateResult summarizes one generation run.
type GenerateResult struct {
	StudyHash    string     `json:"study_hash,omitempty"`
	PopulationID string     `json:"population_id,omitempty"`
	Sequences    int        `json:"sequences"`
	Seed         *uint64    `json:"seed,omitempty"`
	MinLength    int        `json:"min_length"`
	MaxLength    int        `json:"max_length"`
	Output       string     `json:"output,omitempty"`
	Steps        [][]string `json:"steps,omitempty"`
}

func (r GenerateResult) writeText(w io.Writer) {
	for _, steps := range r.Steps {
		fmt.Fprintln(w, strings.Join(steps, " "))
	}
	fmt.Fprintf(w, "✓ Generated %d sequence(s), %d-%d steps\n", r.Sequences, r.MinLength, r.MaxLength)
	if r.PopulationID != "" {
		fmt.Fprintf(w, "  population: %s\n", r.PopulationID)
	}
	if r.Output != "" {
		fmt.Fprintf(w, "  written to: %s\n", r.Output)
	}
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <study>",
		Short: "Generate a population of participant sequences",
		Long: `Generate the study's sequence array: one sequence per participant slot,
balanced across participants.

With --db the study and its population are stored, ready for assign.
With -o the sequences are written as a JSON array. With neither, the
flattened sequences are printed.

Exit codes:
  0 - Sequences generated
  1 - Study is invalid or cannot be generated
  2 - Command error (study not found, database error, etc.)

Examples:
  studyseq generate study.cue
  studyseq generate study.yaml --db ./study.db --seed 42
  studyseq generate study.json -n 200 -o sequences.json --metrics-file gen.prom`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "store the population in this SQLite database")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "number of sequences (default: the study's numSequences)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for a reproducible population")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write sequences as JSON to this file")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

func runGenerate(opts *GenerateOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, verrs, err := validateStudy(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	reg := prometheus.NewRegistry()
	genOpts := []sequence.Option{
		sequence.WithLogger(slog.Default()),
		sequence.WithMetrics(metrics.NewGeneration(reg)),
	}
	var seed *uint64
	if cmd.Flags().Changed("seed") {
		seed = &opts.Seed
		genOpts = append(genOpts, sequence.WithSeed(opts.Seed))
	}
	if cmd.Flags().Changed("count") {
		genOpts = append(genOpts, sequence.WithCount(opts.Count))
	}

	formatter.VerboseLog("Generating sequences for %s", path)
	seqs, genErr := sequence.Generate(cfg, genOpts...)

	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile, reg); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing metrics: %v", err), nil)
		}
	}

	if genErr != nil {
		var ce *sequence.ConfigError
		if errors.As(genErr, &ce) {
			return formatter.Fail(ExitFailure, ErrCodeGeneration, genErr.Error(), map[string]string{
				"path":  ce.Path,
				"field": ce.Field,
				"code":  string(ce.Code),
			})
		}
		return formatter.Fail(ExitFailure, ErrCodeGeneration, genErr.Error(), nil)
	}

	report := balance.Analyze(seqs)
	result := GenerateResult{
		Sequences: len(seqs),
		Seed:      seed,
		MinLength: report.MinLength,
		MaxLength: report.MaxLength,
	}

	if opts.Output != "" {
		if err := writeSequences(opts.Output, seqs); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		result.Output = opts.Output
	}

	if opts.Database != "" {
		hash, popID, err := storePopulation(ctx, opts.Database, cfg, seqs, seed)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to store population", err)
		}
		result.StudyHash = hash
		result.PopulationID = popID
		slog.Info("population stored", "db", opts.Database, "population", popID, "sequences", len(seqs))
	}

	if opts.Output == "" && opts.Database == "" {
		result.Steps = make([][]string, len(seqs))
		for i, seq := range seqs {
			result.Steps[i] = sequence.FlatMap(seq)
		}
	}

	return formatter.Success(result)
}

// writeSequences writes the population as an indented JSON array.
func writeSequences(path string, seqs []*ir.Sequence) error {
	data, err := json.MarshalIndent(seqs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sequences: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing sequences: %w", err)
	}
	return nil
}

// storePopulation saves the study and its population, creating the
// database if needed.
func storePopulation(ctx context.Context, dbPath string, cfg *ir.StudyConfig, seqs []*ir.Sequence, seed *uint64) (string, string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	hash, err := st.SaveStudy(ctx, cfg)
	if err != nil {
		return "", "", err
	}
	popID, err := st.SavePopulation(ctx, hash, seqs, store.PopulationMeta{Seed: seed})
	if err != nil {
		return "", "", err
	}
	return hash, popID, nil
}
