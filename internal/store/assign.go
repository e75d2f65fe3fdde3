package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/studyseq/internal/ir"
)

// Assignment records which sequence a participant received.
type Assignment struct {
	PopulationID  string
	ParticipantID string
	// Seq is the participant's 0-based registration order in the population.
	Seq           int64
	SequenceIndex int
	Sequence      *ir.Sequence
}

// AssignParticipant hands the next sequence of a population to a participant.
//
// Participants receive sequences round-robin in registration order: the
// n-th new participant gets sequence n mod size. Assigning a participant who
// already has a sequence returns the existing assignment. An empty
// participantID is replaced by a fresh ID from the store's IDGenerator.
func (s *Store) AssignParticipant(ctx context.Context, populationID, participantID string) (Assignment, error) {
	if participantID == "" {
		participantID = s.ids.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Assignment{}, fmt.Errorf("assign participant: begin: %w", err)
	}
	defer tx.Rollback()

	a := Assignment{PopulationID: populationID, ParticipantID: participantID}

	err = tx.QueryRowContext(ctx, `
		SELECT seq, sequence_idx FROM assignments
		WHERE population_id = ? AND participant_id = ?
	`, populationID, participantID).Scan(&a.Seq, &a.SequenceIndex)
	switch {
	case err == nil:
		if a.Sequence, err = readSequence(ctx, tx, populationID, a.SequenceIndex); err != nil {
			return Assignment{}, fmt.Errorf("assign participant: %w", err)
		}
		return a, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Assignment{}, fmt.Errorf("assign participant: %w", err)
	}

	var size int
	if err := tx.QueryRowContext(ctx, `SELECT size FROM populations WHERE id = ?`, populationID).Scan(&size); err != nil {
		return Assignment{}, fmt.Errorf("assign participant: population %s: %w", populationID, err)
	}

	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq) + 1, 0) FROM assignments WHERE population_id = ?
	`, populationID).Scan(&a.Seq); err != nil {
		return Assignment{}, fmt.Errorf("assign participant: next seq: %w", err)
	}
	a.SequenceIndex = int(a.Seq % int64(size))

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO assignments (population_id, participant_id, seq, sequence_idx)
		VALUES (?, ?, ?, ?)
	`, populationID, participantID, a.Seq, a.SequenceIndex); err != nil {
		return Assignment{}, fmt.Errorf("assign participant: %w", err)
	}

	if a.Sequence, err = readSequence(ctx, tx, populationID, a.SequenceIndex); err != nil {
		return Assignment{}, fmt.Errorf("assign participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Assignment{}, fmt.Errorf("assign participant: commit: %w", err)
	}
	return a, nil
}

// Assignments lists a population's assignments in registration order.
// Sequences are not loaded. Returns an empty slice (not nil) if there are none.
func (s *Store) Assignments(ctx context.Context, populationID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id, seq, sequence_idx
		FROM assignments
		WHERE population_id = ?
		ORDER BY seq ASC, participant_id COLLATE BINARY ASC
	`, populationID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	out := []Assignment{}
	for rows.Next() {
		a := Assignment{PopulationID: populationID}
		if err := rows.Scan(&a.ParticipantID, &a.Seq, &a.SequenceIndex); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}
