package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndRecent(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	first := Record{
		ID:         uuid.NewString(),
		StartedAt:  base,
		DurationMS: 4200,
		Category:   "AI",
		Title:      "First",
		Slug:       "first",
		Status:     "success",
	}
	second := Record{
		ID:         uuid.NewString(),
		StartedAt:  base.Add(time.Hour),
		DurationMS: 100,
		Category:   "Web3",
		Title:      "Second",
		Slug:       "second",
		Status:     "failed",
		Error:      "push failed: 409 Conflict",
	}

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	require.Equal(t, "second", records[0].Slug)
	require.Equal(t, "failed", records[0].Status)
	require.Equal(t, "push failed: 409 Conflict", records[0].Error)
	require.Equal(t, base.Add(time.Hour), records[0].StartedAt)
	require.Equal(t, "first", records[1].Slug)
}

func TestStore_RecentLimit(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec := Record{
			ID:        uuid.NewString(),
			StartedAt: time.Now().Add(time.Duration(i) * time.Minute),
			Category:  "AI",
			Title:     "t",
			Slug:      "s",
			Status:    "success",
		}
		require.NoError(t, store.Append(ctx, rec))
	}

	records, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
}

func TestNewStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
