package memory

import (
	"context"
	"sync"

	"github.com/okvist/localspot/models"
)

// MemoryReviewCache is the in-process shared cache. Reply slices are
// copied on the way in and out so concurrent readers never observe a
// caller's mutation in place.
type MemoryReviewCache struct {
	mu       sync.RWMutex
	votes    map[string]models.VoteState
	replies  map[string][]models.Reply
	previews map[string]*models.ReviewPreview
}

func NewMemoryReviewCache() *MemoryReviewCache {
	return &MemoryReviewCache{
		votes:    make(map[string]models.VoteState),
		replies:  make(map[string][]models.Reply),
		previews: make(map[string]*models.ReviewPreview),
	}
}

func (c *MemoryReviewCache) GetVoteState(ctx context.Context, reviewId string) (models.VoteState, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, found := c.votes[reviewId]
	return state, found, nil
}

func (c *MemoryReviewCache) SetVoteState(ctx context.Context, reviewId string, state models.VoteState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.votes[reviewId] = state
	return nil
}

func (c *MemoryReviewCache) GetReplies(ctx context.Context, reviewId string) ([]models.Reply, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	replies, found := c.replies[reviewId]
	if !found {
		return nil, false, nil
	}
	return copyReplies(replies), true, nil
}

func (c *MemoryReviewCache) SetReplies(ctx context.Context, reviewId string, replies []models.Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[reviewId] = copyReplies(replies)
	return nil
}

func (c *MemoryReviewCache) GetPreview(ctx context.Context, businessId string) (*models.ReviewPreview, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	preview, found := c.previews[businessId]
	return preview, found, nil
}

func (c *MemoryReviewCache) SetPreview(ctx context.Context, businessId string, preview *models.ReviewPreview) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.previews[businessId] = preview
	return nil
}

func copyReplies(replies []models.Reply) []models.Reply {
	copied := make([]models.Reply, len(replies))
	copy(copied, replies)
	return copied
}
