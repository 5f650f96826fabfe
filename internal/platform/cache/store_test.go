package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Total float64 `json:"total"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Minute)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var out payload
	hit, err := store.Get(ctx, "reports", "balance-sheet", &out)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, store.Set(ctx, "reports", "balance-sheet", payload{Total: 125000}))

	hit, err = store.Get(ctx, "reports", "balance-sheet", &out)
	require.NoError(t, err)
	require.True(t, hit)
	require.InDelta(t, 125000, out.Total, 0.0001)
}

func TestStoreInvalidateByModule(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "reports", "balance-sheet", payload{Total: 1}))
	require.NoError(t, store.Set(ctx, "reports", "profit-loss", payload{Total: 2}))
	require.NoError(t, store.Set(ctx, "catalog", "variants", payload{Total: 3}))

	require.NoError(t, store.Invalidate(ctx, "reports"))

	var out payload
	hit, err := store.Get(ctx, "reports", "balance-sheet", &out)
	require.NoError(t, err)
	require.False(t, hit)
	hit, err = store.Get(ctx, "reports", "profit-loss", &out)
	require.NoError(t, err)
	require.False(t, hit)
	hit, err = store.Get(ctx, "catalog", "variants", &out)
	require.NoError(t, err)
	require.True(t, hit)
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store
	ctx := context.Background()

	var out payload
	hit, err := store.Get(ctx, "reports", "balance-sheet", &out)
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, store.Set(ctx, "reports", "balance-sheet", payload{}))
	require.NoError(t, store.Invalidate(ctx, "reports"))
}
