package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisStore "github.com/aretw0/spool/internal/adapters/redis"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redisStore.Option) (*redisStore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redisStore.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func sample() *machine.Machine {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.AddTransition("s0", 'a', 'a', machine.Right, "qA")
	m.Finalize()
	return m
}

func TestSaveLoad(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "demo", sample()))

	got, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "s0", got.Start)
	assert.Equal(t, sample().Delta["s0"], got.Delta["s0"])
}

func TestLoadMissing(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrMachineNotFound)
}

func TestListPrunesExpired(t *testing.T) {
	store, mr := newStore(t, redisStore.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "keep", sample()))
	require.NoError(t, store.Save(ctx, "expire", sample()))

	// Let one document expire; the index must drop it lazily.
	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.Save(ctx, "keep", sample()))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, names)
}

func TestDelete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "demo", sample()))
	require.NoError(t, store.Delete(ctx, "demo"))

	_, err := store.Load(ctx, "demo")
	assert.ErrorIs(t, err, ports.ErrMachineNotFound)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
