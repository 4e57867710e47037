package api

import (
	"context"
	"errors"

	"github.com/okvist/localspot/models"
)

// MaxPreviewBatch is the server-enforced cap on ids per batched preview
// request.
const MaxPreviewBatch = 80

// ReviewAPI is the slice of the hosted Localspot backend this client
// consumes. Implementations normalize response shapes at this boundary so
// callers never branch on field presence.
type ReviewAPI interface {
	GetHelpful(ctx context.Context, reviewId string) (bool, error)
	GetHelpfulCount(ctx context.Context, reviewId string) (int, error)
	MarkHelpful(ctx context.Context, reviewId string) error
	UnmarkHelpful(ctx context.Context, reviewId string) error

	GetReplies(ctx context.Context, reviewId string) ([]models.Reply, error)
	PostReply(ctx context.Context, reviewId string, content string) (models.Reply, error)
	PutReply(ctx context.Context, reviewId string, replyId string, content string) (models.Reply, error)
	DeleteReply(ctx context.Context, reviewId string, replyId string) error

	// FetchPreviews returns a map keyed by businessId. Ids the server
	// omitted are absent from the map; callers record them as "fetched,
	// no preview".
	FetchPreviews(ctx context.Context, businessIds []string) (map[string]*models.ReviewPreview, error)
}

// Custom error types for clarity
var (
	ErrRequestFailed = errors.New("request failed")
	ErrItemNotFound  = errors.New("item does not exist")
)
