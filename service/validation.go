package service

import (
	"errors"
	"strings"
)

const maxReplyLength = 2000

// ValidateReplyContent returns the trimmed content; the trimmed form is
// what goes into both the optimistic cache entry and the request body.
func ValidateReplyContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) == 0 {
		return "", errors.New("reply content is empty")
	}
	if len(trimmed) > maxReplyLength {
		return "", errors.New("reply content too long")
	}
	return trimmed, nil
}

// ValidateReviewId rejects temporary ids: a reply cannot attach to a
// review the server has not confirmed yet.
func ValidateReviewId(reviewId string) error {
	if len(reviewId) == 0 {
		return errors.New("review id is empty")
	}
	if IsTemporaryId(reviewId) {
		return errors.New("review id is not server-confirmed")
	}
	return nil
}
