package mocks

import (
	"context"

	"github.com/okvist/localspot/models"
	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetVoteState(ctx context.Context, reviewId string) (models.VoteState, bool, error) {
	args := m.Called(ctx, reviewId)
	return args.Get(0).(models.VoteState), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetVoteState(ctx context.Context, reviewId string, state models.VoteState) error {
	args := m.Called(ctx, reviewId, state)
	return args.Error(0)
}

func (m *MockCache) GetReplies(ctx context.Context, reviewId string) ([]models.Reply, bool, error) {
	args := m.Called(ctx, reviewId)
	var replies []models.Reply
	if args.Get(0) != nil {
		replies = args.Get(0).([]models.Reply)
	}
	return replies, args.Bool(1), args.Error(2)
}

func (m *MockCache) SetReplies(ctx context.Context, reviewId string, replies []models.Reply) error {
	args := m.Called(ctx, reviewId, replies)
	return args.Error(0)
}

func (m *MockCache) GetPreview(ctx context.Context, businessId string) (*models.ReviewPreview, bool, error) {
	args := m.Called(ctx, businessId)
	var preview *models.ReviewPreview
	if args.Get(0) != nil {
		preview = args.Get(0).(*models.ReviewPreview)
	}
	return preview, args.Bool(1), args.Error(2)
}

func (m *MockCache) SetPreview(ctx context.Context, businessId string, preview *models.ReviewPreview) error {
	args := m.Called(ctx, businessId, preview)
	return args.Error(0)
}
