package service

import (
	"Tipwall/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFeedRanksByScore(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 1, model.VisibilityPublic, 0)
	env.seedPost(t, 2, model.VisibilityTippable, 5)
	env.seedPost(t, 3, model.VisibilityPublic, 0)
	ctx := context.Background()

	_, err := env.engagement.ToggleVote(ctx, 2, viewerAddr, model.Upvote)
	require.NoError(t, err)
	require.NoError(t, env.engagement.UpdateReplyCount(ctx, 3, 1))
	_, err = env.engagement.ToggleVote(ctx, 1, viewerAddr, model.Downvote)
	require.NoError(t, err)

	feed, err := env.feedSvc.ListFeed(ctx, viewer(otherAddr), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, feed.Total)
	require.Len(t, feed.Items, 3)

	var order []uint64
	for _, item := range feed.Items {
		order = append(order, item.LedgerID)
	}
	assert.Equal(t, []uint64{3, 2, 1}, order)
	assert.Equal(t, int64(10), feed.Items[0].Stats.Score)
	assert.Equal(t, int64(3), feed.Items[1].Stats.Score)

	locked := feed.Items[1]
	assert.False(t, locked.Access.HasAccess)
	assert.Empty(t, locked.Content)
	assert.Equal(t, "teaser 2", locked.Preview)
	assert.Equal(t, "full text 3", feed.Items[0].Content)
}

func TestListFeedPagination(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 1, model.VisibilityPublic, 0)
	env.seedPost(t, 2, model.VisibilityPublic, 0)

	feed, err := env.feedSvc.ListFeed(context.Background(), nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)

	empty, err := env.feedSvc.ListFeed(context.Background(), nil, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 2, empty.Total)
}
