package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselineRepository_GetMissing(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewBaselineRepository(db)

	got, err := repo.Get(context.Background(), "no-such-village")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBaselineRepository_UpsertBumpsGeneration(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewBaselineRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "village-1", "https://img/v1.png"))

	got, err := repo.Get(ctx, "village-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://img/v1.png", got.ImageURL)
	assert.Equal(t, 0, got.Generation)

	require.NoError(t, repo.Upsert(ctx, "village-1", "https://img/v2.png"))

	got, err = repo.Get(ctx, "village-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "https://img/v2.png", got.ImageURL)
	assert.Equal(t, 1, got.Generation)
}
