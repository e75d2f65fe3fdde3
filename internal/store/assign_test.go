package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/studyseq/internal/testutil"
)

func TestAssignParticipant_RoundRobin(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := savePopulation(t, s, 3)
	seqs := createTestPopulation(3)

	for i := 0; i < 7; i++ {
		a, err := s.AssignParticipant(ctx, id, fmt.Sprintf("p%d", i))
		require.NoError(t, err)
		assert.Equal(t, int64(i), a.Seq)
		assert.Equal(t, i%3, a.SequenceIndex)
		assert.Equal(t, seqs[i%3], a.Sequence)
	}

	list, err := s.Assignments(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 7)
	for i, a := range list {
		assert.Equal(t, fmt.Sprintf("p%d", i), a.ParticipantID)
		assert.Equal(t, int64(i), a.Seq)
	}
}

func TestAssignParticipant_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := savePopulation(t, s, 3)

	first, err := s.AssignParticipant(ctx, id, "alice")
	require.NoError(t, err)
	_, err = s.AssignParticipant(ctx, id, "bob")
	require.NoError(t, err)
	again, err := s.AssignParticipant(ctx, id, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, again)

	list, err := s.Assignments(ctx, id)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAssignParticipant_GeneratesIDs(t *testing.T) {
	gen := testutil.NewFixedIDGenerator("gen-1", "gen-2")
	s := createTestStore(t, WithIDGenerator(gen))
	ctx := context.Background()
	id := savePopulation(t, s, 2)

	a, err := s.AssignParticipant(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "gen-1", a.ParticipantID)

	b, err := s.AssignParticipant(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "gen-2", b.ParticipantID)
	assert.Equal(t, 1, b.SequenceIndex)
}

func TestAssignParticipant_DefaultUUIDs(t *testing.T) {
	s := createTestStore(t)
	id := savePopulation(t, s, 2)

	a, err := s.AssignParticipant(context.Background(), id, "")
	require.NoError(t, err)
	assert.Len(t, a.ParticipantID, 36)
}

func TestAssignParticipant_PopulationsAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	studyHash, err := s.SaveStudy(ctx, createTestStudy(2))
	require.NoError(t, err)

	popA, err := s.SavePopulation(ctx, studyHash, createTestPopulation(2), PopulationMeta{})
	require.NoError(t, err)
	popB, err := s.SavePopulation(ctx, studyHash, createTestPopulation(3), PopulationMeta{})
	require.NoError(t, err)

	_, err = s.AssignParticipant(ctx, popA, "p")
	require.NoError(t, err)
	b, err := s.AssignParticipant(ctx, popB, "p")
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Seq)
}

func TestAssignParticipant_UnknownPopulation(t *testing.T) {
	s := createTestStore(t)
	_, err := s.AssignParticipant(context.Background(), "missing", "p")
	assert.Error(t, err)
}
