package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/studyseq/internal/balance"
	"github.com/roach88/studyseq/internal/compiler"
	"github.com/roach88/studyseq/internal/ir"
	"github.com/roach88/studyseq/internal/sequence"
	"github.com/roach88/studyseq/internal/store"
	"github.com/roach88/studyseq/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a fixed seed and sequential participant IDs.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Compile the study (file or inline)
// 2. Generate the population with the scenario's seed
// 3. Save it and read it back from the store
// 4. Register participants and check round-robin assignment
// 5. Evaluate assertions
//
// A returned error means the scenario could not be executed at all; a
// failed expectation is reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(&testutil.SequentialIDGenerator{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg, err := compileStudy(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to compile study: %w", err)
	}

	seed := uint64(testutil.DefaultSeed)
	if scenario.Seed != nil {
		seed = *scenario.Seed
	}
	opts := []sequence.Option{sequence.WithSeed(seed), sequence.WithLogger(h.logger)}
	if scenario.NumSequences != nil {
		opts = append(opts, sequence.WithCount(*scenario.NumSequences))
	}

	result := NewResult()

	seqs, genErr := sequence.Generate(cfg, opts...)
	if genErr != nil {
		result.GenerationError = genErr
		for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
			result.AddError(msg)
		}
		return result, nil
	}

	if err := h.persist(ctx, cfg, seqs, seed, scenario.Participants, result); err != nil {
		return nil, err
	}

	result.Report = balance.Analyze(result.Sequences)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"sequences", len(seqs),
	)
	return result, nil
}

// persist saves the population, reads it back and registers participants.
// A round-trip mismatch or wrong assignment is recorded as a failure.
func (h *Harness) persist(ctx context.Context, cfg *ir.StudyConfig, seqs []*ir.Sequence, seed uint64, participants int, result *Result) error {
	studyHash, err := h.store.SaveStudy(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to save study: %w", err)
	}
	popID, err := h.store.SavePopulation(ctx, studyHash, seqs, store.PopulationMeta{Seed: &seed})
	if err != nil {
		return fmt.Errorf("failed to save population: %w", err)
	}
	result.PopulationID = popID

	loaded, err := h.store.LoadPopulation(ctx, popID)
	if err != nil {
		return fmt.Errorf("failed to load population: %w", err)
	}
	if diff := cmp.Diff(seqs, loaded); diff != "" {
		result.AddError(fmt.Sprintf("stored population differs from generated (-generated +stored):\n%s", diff))
	}
	result.Sequences = loaded

	for i := 0; i < participants; i++ {
		a, err := h.store.AssignParticipant(ctx, popID, "")
		if err != nil {
			return fmt.Errorf("failed to assign participant %d: %w", i, err)
		}
		if want := i % len(seqs); a.SequenceIndex != want {
			result.AddError(fmt.Sprintf("participant %d (%s) received sequence %d, want %d", i, a.ParticipantID, a.SequenceIndex, want))
		}
	}
	return nil
}

// compileStudy loads the scenario's study from its file or inline block.
func compileStudy(s *Scenario) (*ir.StudyConfig, error) {
	if s.Inline != nil {
		data, err := json.Marshal(s.Inline)
		if err != nil {
			return nil, fmt.Errorf("encode inline study: %w", err)
		}
		return compiler.CompileSource(s.Name+".inline.json", data)
	}

	data, err := os.ReadFile(s.Study)
	if err != nil {
		return nil, fmt.Errorf("read study: %w", err)
	}
	return compiler.CompileSource(s.Study, data)
}
