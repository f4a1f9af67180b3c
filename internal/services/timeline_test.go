package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMiss = errors.New("cache miss")

// mapCache is an in-process TimelineCache for tests.
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return errMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *mapCache) SetJSON(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *mapCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func TestHomeTimelineMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))

	env.post(t, bob.ID, "from bob")
	env.post(t, alice.ID, "from alice")
	env.post(t, carol.ID, "from carol")

	messages, err := env.timeline.Home(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	texts := []string{messages[0].Text, messages[1].Text}
	assert.Contains(t, texts, "from bob")
	assert.Contains(t, texts, "from alice")
	assert.NotContains(t, texts, "from carol")
}

func TestHomeTimelineCacheAndInvalidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cache := newMapCache()
	env.timeline.cache = cache

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))

	env.post(t, bob.ID, "first")

	messages, err := env.timeline.Home(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	// A new message is invisible until the cache entry is dropped.
	env.post(t, bob.ID, "second")

	messages, err = env.timeline.Home(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	require.NoError(t, env.timeline.InvalidateForAuthor(ctx, bob.ID))

	messages, err = env.timeline.Home(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
