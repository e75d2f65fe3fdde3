package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_ByIndex(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := savePopulation(t, s, 3)

	want := createTestPopulation(3)
	for i := range want {
		got, err := s.Sequence(ctx, id, i)
		require.NoError(t, err)
		assert.Equal(t, want[i], got)
	}
}

func TestSequence_OutOfRange(t *testing.T) {
	s := createTestStore(t)
	id := savePopulation(t, s, 3)

	_, err := s.Sequence(context.Background(), id, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestReadNotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.ReadStudy(ctx, "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = s.ReadPopulation(ctx, "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = s.LoadPopulation(ctx, "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = s.LatestPopulation(ctx, "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	pops, err := s.Populations(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, pops)
	assert.Empty(t, pops)
}

func TestLatestPopulation_AnyStudy(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LatestPopulation(ctx, "")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	savePopulation(t, s, 2)
	second := savePopulation(t, s, 3)

	p, err := s.LatestPopulation(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, second, p.ID)
	assert.Equal(t, 3, p.Size)
}
