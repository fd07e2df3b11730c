package replystore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replyflow/replyflow/internal/cache"
	"github.com/replyflow/replyflow/internal/models"
)

func sampleRules() []models.Reply {
	return []models.Reply{
		{ID: 1, IGAccountID: 7, Keyword: "price", Reply: "100 EUR", MatchType: models.MatchExact},
		{ID: 2, IGAccountID: 7, Keyword: "ship", Reply: "We ship worldwide", MatchType: models.MatchPartial,
			Buttons: []models.Button{{Title: "Shop", URL: "https://example.com"}}},
	}
}

func TestStore_SetAndGetReplies(t *testing.T) {
	store := New(NewMemoryAdapter())
	ctx := context.Background()

	got, err := store.Replies(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.SetReplies(ctx, 7, sampleRules()))

	got, err = store.Replies(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "price", got[0].Keyword)
}

func TestStore_ColdStartFallsBackToAdapter(t *testing.T) {
	adapter := NewMemoryAdapter()
	ctx := context.Background()
	require.NoError(t, adapter.Save(ctx, 7, sampleRules()))

	// A fresh store simulates a restart; the mirror repopulates it.
	store := New(adapter)
	got, err := store.Replies(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestStore_EditingIsTransient(t *testing.T) {
	adapter := NewMemoryAdapter()
	store := New(adapter)
	ctx := context.Background()

	require.NoError(t, store.SetReplies(ctx, 7, sampleRules()))
	draft := &models.Reply{Keyword: "draft", Reply: "unsaved"}
	store.SetEditing(7, draft)

	got, ok := store.Editing(7)
	require.True(t, ok)
	assert.Equal(t, "draft", got.Keyword)

	// The mirror only carries the committed rule list.
	mirrored, found, err := adapter.Load(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, mirrored, 2)

	store.SetEditing(7, nil)
	_, ok = store.Editing(7)
	assert.False(t, ok)
}

func TestStore_Invalidate(t *testing.T) {
	adapter := NewMemoryAdapter()
	store := New(adapter)
	ctx := context.Background()

	require.NoError(t, store.SetReplies(ctx, 7, sampleRules()))
	store.Invalidate(7)

	// After invalidation the list reloads from the adapter.
	got, err := store.Replies(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRedisAdapter(t *testing.T) {
	mr := miniredis.RunT(t)
	c := &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	adapter := NewRedisAdapter(c, time.Hour)
	ctx := context.Background()

	_, found, err := adapter.Load(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, adapter.Save(ctx, 7, sampleRules()))

	got, found, err := adapter.Load(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 2)
	assert.Equal(t, "ship", got[1].Keyword)
	require.Len(t, got[1].Buttons, 1)
	assert.Equal(t, "https://example.com", got[1].Buttons[0].URL)
}
