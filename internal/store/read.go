package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/roach88/studyseq/internal/ir"
)

// Population is the stored metadata of one generated sequence array.
type Population struct {
	ID               string
	StudyHash        string
	Size             int
	Seed             *uint64
	GeneratorVersion string
	Seq              int64
}

// ReadStudy retrieves a study configuration by content hash.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) ReadStudy(ctx context.Context, hash string) (*ir.StudyConfig, error) {
	var configJSON string
	err := s.db.QueryRowContext(ctx, `SELECT config FROM studies WHERE id = ?`, hash).Scan(&configJSON)
	if err != nil {
		return nil, fmt.Errorf("read study %s: %w", hash, err)
	}
	return unmarshalStudy(configJSON)
}

// ReadPopulation retrieves population metadata by ID.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) ReadPopulation(ctx context.Context, id string) (Population, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, study_hash, size, seed, generator_version, seq
		FROM populations
		WHERE id = ?
	`, id)
	p, err := scanPopulation(row)
	if err != nil {
		return Population{}, fmt.Errorf("read population %s: %w", id, err)
	}
	return p, nil
}

// LatestPopulation returns the most recently saved population of a study.
// An empty studyHash matches every study.
// Returns sql.ErrNoRows (wrapped) if there is none.
func (s *Store) LatestPopulation(ctx context.Context, studyHash string) (Population, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, study_hash, size, seed, generator_version, seq
		FROM populations
		WHERE ? = '' OR study_hash = ?
		ORDER BY seq DESC
		LIMIT 1
	`, studyHash, studyHash)
	p, err := scanPopulation(row)
	if err != nil {
		return Population{}, fmt.Errorf("latest population of %s: %w", studyHash, err)
	}
	return p, nil
}

// Populations lists all populations of a study in save order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Populations(ctx context.Context, studyHash string) ([]Population, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, study_hash, size, seed, generator_version, seq
		FROM populations
		WHERE study_hash = ?
		ORDER BY seq ASC
	`, studyHash)
	if err != nil {
		return nil, fmt.Errorf("query populations: %w", err)
	}
	defer rows.Close()

	pops := []Population{}
	for rows.Next() {
		p, err := scanPopulation(rows)
		if err != nil {
			return nil, err
		}
		pops = append(pops, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate populations: %w", err)
	}
	return pops, nil
}

// LoadPopulation returns every sequence of a population in generation order.
// Returns sql.ErrNoRows (wrapped) if the population does not exist.
func (s *Store) LoadPopulation(ctx context.Context, id string) ([]*ir.Sequence, error) {
	if _, err := s.ReadPopulation(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT body
		FROM sequences
		WHERE population_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var seqs []*ir.Sequence
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		seq, err := unmarshalSequence(body)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sequences: %w", err)
	}
	return seqs, nil
}

// Sequence returns sequence i of a population.
func (s *Store) Sequence(ctx context.Context, populationID string, i int) (*ir.Sequence, error) {
	return readSequence(ctx, s.db, populationID, i)
}

// querier is the subset of *sql.DB and *sql.Tx used by shared readers.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readSequence(ctx context.Context, q querier, populationID string, i int) (*ir.Sequence, error) {
	var body string
	err := q.QueryRowContext(ctx, `
		SELECT body FROM sequences WHERE population_id = ? AND idx = ?
	`, populationID, i).Scan(&body)
	if err != nil {
		return nil, fmt.Errorf("read sequence %d of %s: %w", i, populationID, err)
	}
	return unmarshalSequence(body)
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPopulation(row rowScanner) (Population, error) {
	var p Population
	var seed sql.NullString
	if err := row.Scan(&p.ID, &p.StudyHash, &p.Size, &seed, &p.GeneratorVersion, &p.Seq); err != nil {
		return Population{}, err
	}
	if seed.Valid {
		v, err := strconv.ParseUint(seed.String, 10, 64)
		if err != nil {
			return Population{}, fmt.Errorf("parse seed %q: %w", seed.String, err)
		}
		p.Seed = &v
	}
	return p, nil
}
