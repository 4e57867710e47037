package memory_test

import (
	"context"
	"testing"

	"github.com/okvist/localspot/cache/memory"
	"github.com/okvist/localspot/models"
	"github.com/stretchr/testify/assert"
)

func TestVoteState_AbsentKeyReportsNotFound(t *testing.T) {
	c := memory.NewMemoryReviewCache()
	ctx := context.Background()

	_, found, err := c.GetVoteState(ctx, "review-1")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.SetVoteState(ctx, "review-1", models.VoteState{Count: 3, Marked: true}))

	state, found, err := c.GetVoteState(ctx, "review-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.VoteState{Count: 3, Marked: true}, state)
}

func TestReplies_CopiedOnReadAndWrite(t *testing.T) {
	c := memory.NewMemoryReviewCache()
	ctx := context.Background()

	original := []models.Reply{{Id: "a", Content: "one"}}
	assert.NoError(t, c.SetReplies(ctx, "review-1", original))

	// Mutating the caller's slice must not leak into the cache.
	original[0].Content = "mutated"

	got, found, err := c.GetReplies(ctx, "review-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "one", got[0].Content)

	// Nor must mutating a read result.
	got[0].Content = "mutated again"
	again, _, _ := c.GetReplies(ctx, "review-1")
	assert.Equal(t, "one", again[0].Content)
}

func TestPreview_CachedNilIsFound(t *testing.T) {
	c := memory.NewMemoryReviewCache()
	ctx := context.Background()

	_, found, err := c.GetPreview(ctx, "business-1")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.SetPreview(ctx, "business-1", nil))

	preview, found, err := c.GetPreview(ctx, "business-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, preview)
}
