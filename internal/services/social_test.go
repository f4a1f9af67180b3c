package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warbler-social/warbler/internal/models"
)

func TestFollowDirectionality(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))

	following, err := env.social.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followedBy, err := env.social.IsFollowedBy(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, followedBy)

	// The edge is directed; nothing flows the other way.
	reverse, err := env.social.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestSelfFollowRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")

	err := env.social.Follow(ctx, alice.ID, alice.ID)
	assert.True(t, IsValidation(err))
	assert.Zero(t, env.count(t, &models.Follow{}))
}

func TestFollowUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")

	err := env.social.Follow(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowTwiceKeepsOneEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))

	assert.EqualValues(t, 1, env.count(t, &models.Follow{}))
}

func TestUnfollowMissingEdgeIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	require.NoError(t, env.social.Unfollow(ctx, alice.ID, bob.ID))
}

func TestUnfollowRemovesEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, env.social.Unfollow(ctx, alice.ID, bob.ID))

	following, err := env.social.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowerAndFollowingLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, env.social.Follow(ctx, carol.ID, bob.ID))

	followers, err := env.social.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	// Username order, stable across calls.
	assert.Equal(t, "alice", followers[0].Username)
	assert.Equal(t, "carol", followers[1].Username)

	// Not reciprocated: alice has no followers.
	aliceFollowers, err := env.social.Followers(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceFollowers)

	following, err := env.social.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)
}

func TestFollowCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	require.NoError(t, env.social.Follow(ctx, alice.ID, bob.ID))

	followers, err := env.social.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, followers)

	following, err := env.social.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, following)
}
