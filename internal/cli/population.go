package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/store"
)

// PopulationFlags selects a stored population and, for per-sequence
// commands, one of its sequences.
type PopulationFlags struct {
	Database   string
	Population string // empty selects the latest population
	Index      int
}

func addPopulationFlags(cmd *cobra.Command, pf *PopulationFlags, withIndex bool) {
	cmd.Flags().StringVar(&pf.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&pf.Population, "population", "", "population ID (default: latest)")
	if withIndex {
		cmd.Flags().IntVarP(&pf.Index, "index", "i", 0, "sequence index within the population")
	}
}

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadStoredSequence reads the selected sequence of a stored population.
func loadStoredSequence(ctx context.Context, pf *PopulationFlags) (*ir.Sequence, store.Population, error) {
	st, pop, err := openPopulation(ctx, pf.Database, pf.Population)
	if err != nil {
		return nil, store.Population{}, err
	}
	defer st.Close()

	if pf.Index < 0 || pf.Index >= pop.Size {
		return nil, pop, NewExitError(ExitCommandError,
			fmt.Sprintf("%s: sequence index %d out of range (population has %d)", ErrCodeBadIndex, pf.Index, pop.Size))
	}
	seq, err := st.Sequence(ctx, pop.ID, pf.Index)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pop, WrapExitError(ExitCommandError, fmt.Sprintf("%s: sequence %d not found", ErrCodeNotFound, pf.Index), err)
	}
	if err != nil {
		return nil, pop, WrapExitError(ExitCommandError, "failed to read sequence", err)
	}
	return seq, pop, nil
}

// failExit reports an ExitError through the formatter, keeping its exit code.
func failExit(formatter *OutputFormatter, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = formatter.Error(errorCode(exitErr.Message), exitErr.Error(), nil)
		return err
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// errorCode extracts a leading "Exxx" code from a message.
func errorCode(message string) string {
	if len(message) >= 4 && message[0] == 'E' {
		return message[:4]
	}
	return ErrCodeGeneric
}
