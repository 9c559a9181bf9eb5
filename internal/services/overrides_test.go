package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/vexscout/internal/models"
)

func TestMemoryOverrideStore_Ratings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOverrideStore()

	assert.Error(t, store.SetRating(ctx, "RE-1", "100A", 11))
	assert.Error(t, store.SetRating(ctx, "RE-1", "100A", -1))

	require.NoError(t, store.SetRating(ctx, "RE-1", "100A", 8))
	snap, err := store.Snapshot(ctx, "RE-1")
	require.NoError(t, err)
	assert.Equal(t, 8, snap.RatingFor("100a"))

	// Zero removes.
	require.NoError(t, store.SetRating(ctx, "RE-1", "100A", 0))
	snap, err = store.Snapshot(ctx, "RE-1")
	require.NoError(t, err)
	assert.Zero(t, snap.RatingFor("100A"))
}

func TestMemoryOverrideStore_HeadToHead(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOverrideStore()

	assert.Error(t, store.AddHeadToHead(ctx, "RE-1", models.HeadToHead{Winner: "100A"}))
	assert.Error(t, store.AddHeadToHead(ctx, "RE-1", models.HeadToHead{Winner: "100A", Loser: "100a"}))

	require.NoError(t, store.AddHeadToHead(ctx, "RE-1", models.HeadToHead{Winner: "100A", Loser: "200B", Round: "QF"}))
	require.NoError(t, store.AddHeadToHead(ctx, "RE-1", models.HeadToHead{Winner: "300C", Loser: "200B", Round: "SF"}))

	snap, err := store.Snapshot(ctx, "RE-1")
	require.NoError(t, err)
	assert.Len(t, snap.LossesFor("200B"), 2)
	assert.Empty(t, snap.LossesFor("100A"))

	require.NoError(t, store.ClearHeadToHead(ctx, "RE-1"))
	snap, err = store.Snapshot(ctx, "RE-1")
	require.NoError(t, err)
	assert.Empty(t, snap.HeadToHead)
}

func TestMemoryOverrideStore_Picks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOverrideStore()

	require.NoError(t, store.SetPicked(ctx, "RE-1", "100A", true))
	require.NoError(t, store.SetPicked(ctx, "RE-1", "100A", true)) // idempotent
	require.NoError(t, store.SetPicked(ctx, "RE-1", "200B", true))

	snap, _ := store.Snapshot(ctx, "RE-1")
	assert.Len(t, snap.Picked, 2)
	assert.True(t, snap.IsPicked("100a"))

	require.NoError(t, store.SetPicked(ctx, "RE-1", "100A", false))
	snap, _ = store.Snapshot(ctx, "RE-1")
	assert.False(t, snap.IsPicked("100A"))
	assert.True(t, snap.IsPicked("200B"))

	require.NoError(t, store.ResetPicks(ctx, "RE-1"))
	snap, _ = store.Snapshot(ctx, "RE-1")
	assert.Empty(t, snap.Picked)
}

func TestMemoryOverrideStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOverrideStore()
	require.NoError(t, store.SetRating(ctx, "RE-1", "100A", 5))

	snap, _ := store.Snapshot(ctx, "RE-1")
	require.NoError(t, store.SetRating(ctx, "RE-1", "100A", 9))

	assert.Equal(t, 5, snap.RatingFor("100A"), "a held snapshot never sees later writes")
}

func TestMemoryOverrideStore_EventsIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOverrideStore()
	require.NoError(t, store.SetNote(ctx, "RE-1", "100A", "fast intake"))

	snap, _ := store.Snapshot(ctx, "RE-2")
	assert.Empty(t, snap.Notes)
}
