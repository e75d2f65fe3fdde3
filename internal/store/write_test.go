package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/studyseq/internal/ir"
)

func TestSaveStudy_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	cfg := createTestStudy(30)

	hash, err := s.SaveStudy(ctx, cfg)
	require.NoError(t, err)

	want, err := ir.StudyHash(cfg)
	require.NoError(t, err)
	assert.Equal(t, want, hash)

	got, err := s.ReadStudy(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveStudy_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	h1, err := s.SaveStudy(ctx, createTestStudy(30))
	require.NoError(t, err)
	h2, err := s.SaveStudy(ctx, createTestStudy(30))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM studies").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSavePopulation_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	studyHash, err := s.SaveStudy(ctx, createTestStudy(5))
	require.NoError(t, err)

	seqs := createTestPopulation(5)
	seed := uint64(1<<63 + 7)
	id, err := s.SavePopulation(ctx, studyHash, seqs, PopulationMeta{Seed: &seed})
	require.NoError(t, err)

	want, err := ir.PopulationHash(seqs)
	require.NoError(t, err)
	assert.Equal(t, want, id)

	loaded, err := s.LoadPopulation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, seqs, loaded)

	pop, err := s.ReadPopulation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, pop.Size)
	assert.Equal(t, studyHash, pop.StudyHash)
	assert.Equal(t, ir.GeneratorVersion, pop.GeneratorVersion)
	require.NotNil(t, pop.Seed)
	assert.Equal(t, seed, *pop.Seed)
	assert.Equal(t, int64(1), pop.Seq)
}

func TestSavePopulation_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	studyHash, err := s.SaveStudy(ctx, createTestStudy(4))
	require.NoError(t, err)

	id1, err := s.SavePopulation(ctx, studyHash, createTestPopulation(4), PopulationMeta{})
	require.NoError(t, err)
	id2, err := s.SavePopulation(ctx, studyHash, createTestPopulation(4), PopulationMeta{})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	pops, err := s.Populations(ctx, studyHash)
	require.NoError(t, err)
	assert.Len(t, pops, 1)
}

func TestSavePopulation_LatestBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	studyHash, err := s.SaveStudy(ctx, createTestStudy(4))
	require.NoError(t, err)

	first, err := s.SavePopulation(ctx, studyHash, createTestPopulation(4), PopulationMeta{})
	require.NoError(t, err)
	second, err := s.SavePopulation(ctx, studyHash, createTestPopulation(6), PopulationMeta{})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	latest, err := s.LatestPopulation(ctx, studyHash)
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)
	assert.Nil(t, latest.Seed)

	pops, err := s.Populations(ctx, studyHash)
	require.NoError(t, err)
	require.Len(t, pops, 2)
	assert.Equal(t, first, pops[0].ID)
	assert.Less(t, pops[0].Seq, pops[1].Seq)
}

func TestSavePopulation_RequiresStudy(t *testing.T) {
	s := createTestStore(t)
	_, err := s.SavePopulation(context.Background(), "missing", createTestPopulation(2), PopulationMeta{})
	assert.Error(t, err, "foreign key should reject an unknown study")
}

func TestSavePopulation_RejectsEmpty(t *testing.T) {
	s := createTestStore(t)
	_, err := s.SavePopulation(context.Background(), "x", nil, PopulationMeta{})
	assert.Error(t, err)
}
