package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/studyseq/internal/ir"
)

// SaveStudy inserts a compiled study configuration and returns its content
// hash. Uses ON CONFLICT(id) DO NOTHING for idempotency - saving the same
// configuration twice returns the same hash and writes nothing.
func (s *Store) SaveStudy(ctx context.Context, cfg *ir.StudyConfig) (string, error) {
	hash, err := ir.StudyHash(cfg)
	if err != nil {
		return "", fmt.Errorf("write study: %w", err)
	}

	configJSON, err := marshalStudy(cfg)
	if err != nil {
		return "", fmt.Errorf("write study: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO studies (id, study_id, config, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, hash, cfg.UIConfig.StudyID, configJSON, ir.IRVersion)
	if err != nil {
		return "", fmt.Errorf("write study: %w", err)
	}

	return hash, nil
}

// PopulationMeta describes how a population was generated.
type PopulationMeta struct {
	// Seed is the generator seed, or nil for an unseeded run.
	Seed *uint64
}

// SavePopulation stores a generated sequence array for a saved study and
// returns the population's content hash.
//
// The population and all of its sequences are written in one transaction.
// Saving an identical array again is a no-op that returns the same hash.
// Each new population gets the next logical seq, which orders populations
// of the same study.
func (s *Store) SavePopulation(ctx context.Context, studyHash string, seqs []*ir.Sequence, meta PopulationMeta) (string, error) {
	if len(seqs) == 0 {
		return "", fmt.Errorf("write population: empty sequence array")
	}

	id, err := ir.PopulationHash(seqs)
	if err != nil {
		return "", fmt.Errorf("write population: %w", err)
	}

	bodies := make([]string, len(seqs))
	hashes := make([]string, len(seqs))
	for i, seq := range seqs {
		if bodies[i], err = marshalSequence(seq); err != nil {
			return "", fmt.Errorf("write population: sequence %d: %w", i, err)
		}
		if hashes[i], err = ir.SequenceHash(seq); err != nil {
			return "", fmt.Errorf("write population: sequence %d: %w", i, err)
		}
	}

	var seed sql.NullString
	if meta.Seed != nil {
		seed = sql.NullString{String: strconv.FormatUint(*meta.Seed, 10), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write population: begin: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM populations WHERE id = ?`, id).Scan(&existing)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("write population: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO populations (id, study_hash, size, seed, generator_version, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM populations))
	`, id, studyHash, len(seqs), seed, ir.GeneratorVersion)
	if err != nil {
		return "", fmt.Errorf("write population: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sequences (population_id, idx, sequence_hash, body)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("write population: prepare: %w", err)
	}
	defer stmt.Close()

	for i := range seqs {
		if _, err := stmt.ExecContext(ctx, id, i, hashes[i], bodies[i]); err != nil {
			return "", fmt.Errorf("write population: sequence %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write population: commit: %w", err)
	}
	return id, nil
}
