package otp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestStores_Consume(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		put    string
		submit string
		want   bool
	}{
		{name: "Matching code", put: "123456", submit: "123456", want: true},
		{name: "Wrong code", put: "123456", submit: "654321", want: false},
		{name: "Nothing issued", put: "", submit: "123456", want: false},
	}

	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			s, _ := newRedisStore(t)
			return s
		},
	}

	for storeName, build := range stores {
		for _, tt := range tests {
			t.Run(storeName+"/"+tt.name, func(t *testing.T) {
				store := build(t)
				if tt.put != "" {
					require.NoError(t, store.Put(ctx, "Asha@Example.com ", tt.put, time.Minute))
				}
				ok, err := store.Consume(ctx, "asha@example.com", tt.submit)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok)
			})
		}

		t.Run(storeName+"/Code is single use", func(t *testing.T) {
			store := build(t)
			require.NoError(t, store.Put(ctx, "a@b.io", "111111", time.Minute))
			ok, err := store.Consume(ctx, "a@b.io", "111111")
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = store.Consume(ctx, "a@b.io", "111111")
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run(storeName+"/New code replaces old", func(t *testing.T) {
			store := build(t)
			require.NoError(t, store.Put(ctx, "a@b.io", "111111", time.Minute))
			require.NoError(t, store.Put(ctx, "a@b.io", "222222", time.Minute))
			ok, err := store.Consume(ctx, "a@b.io", "111111")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(context.Background(), "a@b.io", "123456", 5*time.Minute))
	now = now.Add(5*time.Minute + time.Second)

	ok, err := store.Consume(context.Background(), "a@b.io", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.entries)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)

	require.NoError(t, store.Put(context.Background(), "a@b.io", "123456", 5*time.Minute))
	mr.FastForward(5*time.Minute + time.Second)

	ok, err := store.Consume(context.Background(), "a@b.io", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}
