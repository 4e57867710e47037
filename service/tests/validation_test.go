package service_test

import (
	"strings"
	"testing"

	"github.com/okvist/localspot/service"
	"github.com/stretchr/testify/assert"
)

func TestValidateReplyContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "valid", content: "Thank you!", want: "Thank you!"},
		{name: "trims surrounding whitespace", content: "   Thank you!   ", want: "Thank you!"},
		{name: "empty", content: "", wantErr: true},
		{name: "whitespace only", content: "   \t\n  ", wantErr: true},
		{name: "too long", content: strings.Repeat("a", 2001), wantErr: true},
		{name: "at the limit", content: strings.Repeat("a", 2000), want: strings.Repeat("a", 2000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.ValidateReplyContent(tc.content)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateReviewId(t *testing.T) {
	tests := []struct {
		name     string
		reviewId string
		wantErr  bool
	}{
		{name: "valid", reviewId: "review-123"},
		{name: "empty", reviewId: "", wantErr: true},
		{name: "temporary id", reviewId: "tmp-0190a8b2", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateReviewId(tc.reviewId)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsTemporaryId(t *testing.T) {
	assert.True(t, service.IsTemporaryId("tmp-0190a8b2-7c3e"))
	assert.False(t, service.IsTemporaryId("server-1"))
	assert.False(t, service.IsTemporaryId(""))
}
