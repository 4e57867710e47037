package mocks

import (
	"context"

	"github.com/okvist/localspot/models"
	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetHelpful(ctx context.Context, reviewId string) (bool, error) {
	args := m.Called(ctx, reviewId)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPI) GetHelpfulCount(ctx context.Context, reviewId string) (int, error) {
	args := m.Called(ctx, reviewId)
	return args.Int(0), args.Error(1)
}

func (m *MockAPI) MarkHelpful(ctx context.Context, reviewId string) error {
	args := m.Called(ctx, reviewId)
	return args.Error(0)
}

func (m *MockAPI) UnmarkHelpful(ctx context.Context, reviewId string) error {
	args := m.Called(ctx, reviewId)
	return args.Error(0)
}

func (m *MockAPI) GetReplies(ctx context.Context, reviewId string) ([]models.Reply, error) {
	args := m.Called(ctx, reviewId)
	return args.Get(0).([]models.Reply), args.Error(1)
}

func (m *MockAPI) PostReply(ctx context.Context, reviewId string, content string) (models.Reply, error) {
	args := m.Called(ctx, reviewId, content)
	return args.Get(0).(models.Reply), args.Error(1)
}

func (m *MockAPI) PutReply(ctx context.Context, reviewId string, replyId string, content string) (models.Reply, error) {
	args := m.Called(ctx, reviewId, replyId, content)
	return args.Get(0).(models.Reply), args.Error(1)
}

func (m *MockAPI) DeleteReply(ctx context.Context, reviewId string, replyId string) error {
	args := m.Called(ctx, reviewId, replyId)
	return args.Error(0)
}

func (m *MockAPI) FetchPreviews(ctx context.Context, businessIds []string) (map[string]*models.ReviewPreview, error) {
	args := m.Called(ctx, businessIds)
	var previews map[string]*models.ReviewPreview
	if args.Get(0) != nil {
		previews = args.Get(0).(map[string]*models.ReviewPreview)
	}
	return previews, args.Error(1)
}
