package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-me/internal/domain"
	"todo-me/internal/testutil"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUndoTokenService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatePeekConsume", func(t *testing.T) {
		store := testutil.NewMemoryTokenStore()
		service := NewUndoTokenService(store, newTestLogger())

		token := service.CreateToken(ctx, "user-1", domain.UndoActionUpdate, domain.UndoEntityTask, "task-1",
			map[string]interface{}{"title": "old title"}, time.Minute)
		require.NotEmpty(t, token)

		peeked := service.PeekToken(ctx, "user-1", token)
		require.NotNil(t, peeked)
		assert.Equal(t, domain.UndoActionUpdate, peeked.Action)
		assert.Equal(t, domain.UndoEntityTask, peeked.EntityType)
		assert.Equal(t, "task-1", peeked.EntityID)
		assert.Equal(t, "old title", peeked.PreviousState["title"])

		// Peeking does not consume.
		consumed := service.ConsumeToken(ctx, "user-1", token)
		require.NotNil(t, consumed)
		assert.Equal(t, "task-1", consumed.EntityID)

		assert.Nil(t, service.ConsumeToken(ctx, "user-1", token))
		assert.Nil(t, service.PeekToken(ctx, "user-1", token))
	})

	t.Run("Success_DefaultTTLWhenZero", func(t *testing.T) {
		store := testutil.NewMemoryTokenStore()
		service := NewUndoTokenService(store, newTestLogger())

		token := service.CreateToken(ctx, "user-1", domain.UndoActionDelete, domain.UndoEntityTask, "task-1",
			map[string]interface{}{}, 0)
		require.NotEmpty(t, token)

		peeked := service.PeekToken(ctx, "user-1", token)
		require.NotNil(t, peeked)
		ttl := peeked.ExpiresAt.Sub(peeked.CreatedAt)
		assert.Equal(t, DefaultUndoTTL, ttl)
	})

	t.Run("Error_InvalidActionReturnsEmpty", func(t *testing.T) {
		store := testutil.NewMemoryTokenStore()
		service := NewUndoTokenService(store, newTestLogger())

		token := service.CreateToken(ctx, "user-1", domain.UndoAction("sideways"), domain.UndoEntityTask, "task-1",
			map[string]interface{}{}, time.Minute)
		assert.Empty(t, token)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Error_UserScopedKeys", func(t *testing.T) {
		store := testutil.NewMemoryTokenStore()
		service := NewUndoTokenService(store, newTestLogger())

		token := service.CreateToken(ctx, "user-1", domain.UndoActionUpdate, domain.UndoEntityTask, "task-1",
			map[string]interface{}{"title": "x"}, time.Minute)
		require.NotEmpty(t, token)

		// Another user cannot peek or consume this token.
		assert.Nil(t, service.PeekToken(ctx, "user-2", token))
		assert.Nil(t, service.ConsumeToken(ctx, "user-2", token))

		// The owner still can.
		assert.NotNil(t, service.ConsumeToken(ctx, "user-1", token))
	})
}

func TestUndoTokenService_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("Expired_PeekCleansUp", func(t *testing.T) {
		store := testutil.NewMemoryTokenStore()
		now := time.Now()
		store.Now = func() time.Time { return now }
		service := NewUndoTokenService(store, newTestLogger())

		token := service.CreateToken(ctx, "user-1", domain.UndoActionUpdate, domain.UndoEntityTask, "task-1",
			map[string]interface{}{"title": "x"}, 30*time.Second)
		require.NotEmpty(t, token)

		now = now.Add(31 * time.Second)
		assert.Nil(t, service.PeekToken(ctx, "user-1", token))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Expired_ConsumeReturnsNil", func(t *testing.T) {
		store := testutil.NewMemoryTokenStore()
		now := time.Now()
		store.Now = func() time.Time { return now }
		service := NewUndoTokenService(store, newTestLogger())

		token := service.CreateToken(ctx, "user-1", domain.UndoActionDelete, domain.UndoEntityTask, "task-1",
			map[string]interface{}{"title": "x"}, time.Minute)
		require.NotEmpty(t, token)

		now = now.Add(2 * time.Minute)
		assert.Nil(t, service.ConsumeToken(ctx, "user-1", token))
	})

	t.Run("Unexpired_HasValidToken", func(t *testing.T) {
		store := testutil.NewMemoryTokenStore()
		service := NewUndoTokenService(store, newTestLogger())

		token := service.CreateToken(ctx, "user-1", domain.UndoActionUpdate, domain.UndoEntityTask, "task-1",
			map[string]interface{}{"title": "x"}, time.Minute)
		assert.True(t, service.HasValidToken(ctx, "user-1", token))
		assert.False(t, service.HasValidToken(ctx, "user-1", "no-such-token"))
	})
}

// TestUndoTokenService_SingleUse races many consumers against one
// token. Exactly one must win.
func TestUndoTokenService_SingleUse(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryTokenStore()
	service := NewUndoTokenService(store, newTestLogger())

	token := service.CreateToken(ctx, "user-1", domain.UndoActionDelete, domain.UndoEntityTask, "task-1",
		map[string]interface{}{"title": "x"}, time.Minute)
	require.NotEmpty(t, token)

	const racers = 32
	var wg sync.WaitGroup
	wins := make(chan *domain.UndoToken, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if consumed := service.ConsumeToken(ctx, "user-1", token); consumed != nil {
				wins <- consumed
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one consumer must observe the token")
}

func TestTokenStore_DeleteByPattern(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryTokenStore()
	service := NewUndoTokenService(store, newTestLogger())

	first := service.CreateToken(ctx, "user-1", domain.UndoActionUpdate, domain.UndoEntityTask, "task-1",
		map[string]interface{}{"title": "a"}, time.Minute)
	second := service.CreateToken(ctx, "user-1", domain.UndoActionDelete, domain.UndoEntityTask, "task-2",
		map[string]interface{}{"title": "b"}, time.Minute)
	other := service.CreateToken(ctx, "user-2", domain.UndoActionUpdate, domain.UndoEntityTask, "task-3",
		map[string]interface{}{"title": "c"}, time.Minute)
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	require.NotEmpty(t, other)

	removed, err := store.DeleteByPattern(ctx, "user-1:*")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Only user-1's tokens are gone.
	assert.Nil(t, service.PeekToken(ctx, "user-1", first))
	assert.Nil(t, service.PeekToken(ctx, "user-1", second))
	assert.NotNil(t, service.PeekToken(ctx, "user-2", other))
	assert.Equal(t, 1, store.Len())

	removed, err = store.DeleteByPattern(ctx, "user-1:*")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
