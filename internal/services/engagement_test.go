package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warbler-social/warbler/internal/models"
)

func TestToggleLikeRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	message := env.post(t, alice.ID, "toggle me")

	liked, err := env.engagement.ToggleLike(ctx, bob.ID, message.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, env.count(t, &models.Like{}))

	// Second toggle of the same pair is an unlike, back to the start.
	liked, err = env.engagement.ToggleLike(ctx, bob.ID, message.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, env.count(t, &models.Like{}))
}

func TestToggleLikeOwnMessageRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	message := env.post(t, alice.ID, "self-regard")

	_, err := env.engagement.ToggleLike(ctx, alice.ID, message.ID)
	assert.True(t, IsValidation(err))
	assert.Zero(t, env.count(t, &models.Like{}))
}

func TestToggleLikeUnknownMessage(t *testing.T) {
	env := newTestEnv(t)

	alice := env.register(t, "alice")

	_, err := env.engagement.ToggleLike(context.Background(), alice.ID, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Two racing toggles must never leave two rows for the same pair; the
// composite key decides who inserted, and the loser unlikes.
func TestToggleLikeConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	message := env.post(t, alice.ID, "contended")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engagement.ToggleLike(ctx, bob.ID, message.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, env.db.Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", bob.ID, message.ID).
		Count(&count).Error)
	assert.LessOrEqual(t, count, int64(1))
}

func TestLikedMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	m1 := env.post(t, alice.ID, "I like this")
	env.post(t, alice.ID, "not this one")

	_, err := env.engagement.ToggleLike(ctx, bob.ID, m1.ID)
	require.NoError(t, err)

	liked, err := env.engagement.LikedMessages(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, "I like this", liked[0].Text)

	count, err := env.engagement.LikeCount(ctx, m1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
