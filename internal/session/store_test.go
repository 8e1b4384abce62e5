package session

import (
	"context"
	"testing"
	"time"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Update(ctx, "s1", func(*domain.PendingEntry) *domain.PendingEntry {
		return &domain.PendingEntry{Fields: domain.Fields{SocialWin: "lunch"}}
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.SocialWin = "mutated"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "lunch", again.SocialWin)
	assert.False(t, again.CreatedAt.IsZero())
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	put := func(key string) {
		_, err := store.Update(ctx, key, func(*domain.PendingEntry) *domain.PendingEntry {
			return &domain.PendingEntry{Fields: domain.Fields{PhysicalAchievement: key}}
		})
		require.NoError(t, err)
	}

	put("old")
	clock = clock.Add(2 * time.Hour)
	put("fresh")

	removed, err := store.Sweep(ctx, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
	got, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSweeperStopsOnCancel(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	base := time.Now()
	store.now = func() time.Time { return base }
	_, err := store.Update(ctx, "idle", func(*domain.PendingEntry) *domain.PendingEntry {
		return &domain.PendingEntry{Fields: domain.Fields{SocialWin: "x"}}
	})
	require.NoError(t, err)
	store.mu.Lock()
	store.now = func() time.Time { return base.Add(time.Hour) }
	store.mu.Unlock()

	StartSweeper(ctx, store, time.Minute, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
}
