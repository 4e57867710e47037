package service

import (
	"context"
	"log"

	"github.com/okvist/localspot/models"
)

// RequestPreview returns the cached preview synchronously when the key has
// been fetched before (a nil preview with ok=true means the business has
// none). Uncached ids are handed to the batch scheduler; the caller learns
// the result through its subscription.
func (s *Service) RequestPreview(ctx context.Context, businessId string) (*models.ReviewPreview, bool) {
	preview, found, err := s.Cache.GetPreview(ctx, businessId)
	if err != nil {
		log.Printf("Preview cache read failed for business %s: %v", businessId, err)
	}
	if found {
		return preview, true
	}

	s.PreviewBatcher.Request(businessId)
	return nil, false
}
