package cache

import (
	"context"

	"github.com/okvist/localspot/models"
)

// ReviewCache holds the last known server-confirmed state per resource id.
// It is shared by every consumer for the lifetime of the process (or, with
// the redis implementation, across processes); entries are never evicted
// by the client itself.
type ReviewCache interface {
	GetVoteState(ctx context.Context, reviewId string) (models.VoteState, bool, error)
	SetVoteState(ctx context.Context, reviewId string, state models.VoteState) error

	GetReplies(ctx context.Context, reviewId string) ([]models.Reply, bool, error)
	SetReplies(ctx context.Context, reviewId string, replies []models.Reply) error

	// GetPreview reports found=true for every fetched key, including keys
	// fetched with no preview available (stored as nil). Absent key means
	// "never attempted"; loading indicators depend on the distinction.
	GetPreview(ctx context.Context, businessId string) (*models.ReviewPreview, bool, error)
	SetPreview(ctx context.Context, businessId string, preview *models.ReviewPreview) error
}
