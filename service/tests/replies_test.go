package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okvist/localspot/api"
	"github.com/okvist/localspot/models"
	"github.com/okvist/localspot/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddReply_CommitReplacesTemporaryEntry(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	seed := []models.Reply{
		{Id: "existing-1", Content: "Great spot", AuthorId: "user-2", CreatedAt: 1000},
	}
	reviewCache.SetReplies(ctx, "review-123", seed)

	committed := models.Reply{
		Id: "server-1", Content: "Thank you!", AuthorId: "user-1", CreatedAt: 2000,
	}
	mockAPI.On("PostReply", ctx, "review-123", "Thank you!").Run(func(args mock.Arguments) {
		// While the request is on the wire, the optimistic entry sits at
		// the head of the list under a temporary id.
		midFlight, found, _ := reviewCache.GetReplies(ctx, "review-123")
		assert.True(t, found)
		if assert.Len(t, midFlight, 2) {
			assert.True(t, service.IsTemporaryId(midFlight[0].Id))
			assert.Equal(t, "Thank you!", midFlight[0].Content)
			assert.Equal(t, "user-1", midFlight[0].AuthorId)
			assert.Equal(t, "existing-1", midFlight[1].Id)
		}
	}).Return(committed, nil)

	reply, err := svc.AddReply(ctx, "review-123", "Thank you!")
	assert.NoError(t, err)
	assert.Equal(t, committed, reply)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	if assert.Len(t, final, 2) {
		assert.Equal(t, "server-1", final[0].Id)
		assert.Equal(t, "existing-1", final[1].Id)
	}
	for _, r := range final {
		assert.False(t, service.IsTemporaryId(r.Id))
	}
}

func TestAddReply_FailureRemovesTemporaryEntry(t *testing.T) {
	svc, mockAPI, reviewCache, reviewHub, _ := setupService(t)
	ctx := context.Background()

	seed := []models.Reply{
		{Id: "existing-1", Content: "Great spot", AuthorId: "user-2", CreatedAt: 1000},
	}
	reviewCache.SetReplies(ctx, "review-123", seed)

	mockAPI.On("PostReply", ctx, "review-123", "Thank you!").
		Return(models.Reply{}, errors.New("network down"))

	notifications := 0
	unsubscribe := reviewHub.Subscribe("review:review-123:replies", func() { notifications++ })
	defer unsubscribe()

	_, err := svc.AddReply(ctx, "review-123", "Thank you!")
	assert.Error(t, err)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	assert.Equal(t, seed, final)
	assert.Equal(t, 2, notifications)
}

func TestAddReply_EmptyContentRejected(t *testing.T) {
	svc, mockAPI, _, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddReply(ctx, "review-123", "   ")
	assert.Error(t, err)
	mockAPI.AssertNotCalled(t, "PostReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddReply_TemporaryReviewIdRejected(t *testing.T) {
	svc, mockAPI, _, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddReply(ctx, "tmp-abc", "Thank you!")
	assert.Error(t, err)
	mockAPI.AssertNotCalled(t, "PostReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddReply_SendsTrimmedContent(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	mockAPI.On("PostReply", ctx, "review-123", "Thank you!").
		Return(models.Reply{Id: "server-1", Content: "Thank you!", AuthorId: "user-1"}, nil)

	reply, err := svc.AddReply(ctx, "review-123", "   Thank you!   ")
	assert.NoError(t, err)
	assert.Equal(t, "Thank you!", reply.Content)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	if assert.Len(t, final, 1) {
		assert.Equal(t, "Thank you!", final[0].Content)
	}
	mockAPI.AssertExpectations(t)
}

func TestAddReply_NewestFirst(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	mockAPI.On("PostReply", ctx, "review-123", "first").
		Return(models.Reply{Id: "server-1", Content: "first", AuthorId: "user-1", CreatedAt: 1000}, nil)
	mockAPI.On("PostReply", ctx, "review-123", "second").
		Return(models.Reply{Id: "server-2", Content: "second", AuthorId: "user-1", CreatedAt: 2000}, nil)

	_, err := svc.AddReply(ctx, "review-123", "first")
	assert.NoError(t, err)
	_, err = svc.AddReply(ctx, "review-123", "second")
	assert.NoError(t, err)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	if assert.Len(t, final, 2) {
		assert.Equal(t, "server-2", final[0].Id)
		assert.Equal(t, "server-1", final[1].Id)
	}
}

func TestAddReply_NotAuthenticated(t *testing.T) {
	svc, mockAPI, _, _, _ := setupService(t)
	ctx := context.Background()

	svc.Session = models.Session{}

	_, err := svc.AddReply(ctx, "review-123", "Thank you!")
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	mockAPI.AssertNotCalled(t, "PostReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateReply_OptimisticSwap(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	reviewCache.SetReplies(ctx, "review-123", []models.Reply{
		{Id: "server-1", Content: "old text", AuthorId: "user-1", CreatedAt: 1000},
	})

	mockAPI.On("PutReply", ctx, "review-123", "server-1", "new text").Run(func(args mock.Arguments) {
		midFlight, _, _ := reviewCache.GetReplies(ctx, "review-123")
		if assert.Len(t, midFlight, 1) {
			assert.Equal(t, "new text", midFlight[0].Content)
		}
	}).Return(models.Reply{Id: "server-1", Content: "new text", AuthorId: "user-1", CreatedAt: 1000}, nil)

	err := svc.UpdateReply(ctx, "review-123", "server-1", "new text")
	assert.NoError(t, err)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	if assert.Len(t, final, 1) {
		assert.Equal(t, "new text", final[0].Content)
	}
}

func TestUpdateReply_RestoresPriorContentOnFailure(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	seed := []models.Reply{
		{Id: "server-1", Content: "old text", AuthorId: "user-1", CreatedAt: 1000},
		{Id: "server-2", Content: "untouched", AuthorId: "user-2", CreatedAt: 900},
	}
	reviewCache.SetReplies(ctx, "review-123", seed)

	mockAPI.On("PutReply", ctx, "review-123", "server-1", "new text").
		Return(models.Reply{}, errors.New("network down"))

	err := svc.UpdateReply(ctx, "review-123", "server-1", "new text")
	assert.Error(t, err)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	assert.Equal(t, seed, final)
}

func TestUpdateReply_UnknownReply(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	reviewCache.SetReplies(ctx, "review-123", []models.Reply{
		{Id: "server-1", Content: "old text", AuthorId: "user-1"},
	})

	err := svc.UpdateReply(ctx, "review-123", "server-9", "new text")
	assert.ErrorIs(t, err, api.ErrItemNotFound)
	mockAPI.AssertNotCalled(t, "PutReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReply_RemovesEntry(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	reviewCache.SetReplies(ctx, "review-123", []models.Reply{
		{Id: "a", Content: "one", CreatedAt: 3000},
		{Id: "b", Content: "two", CreatedAt: 2000},
		{Id: "c", Content: "three", CreatedAt: 1000},
	})

	mockAPI.On("DeleteReply", ctx, "review-123", "b").Return(nil)

	err := svc.DeleteReply(ctx, "review-123", "b")
	assert.NoError(t, err)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	if assert.Len(t, final, 2) {
		assert.Equal(t, "a", final[0].Id)
		assert.Equal(t, "c", final[1].Id)
	}
}

func TestDeleteReply_ReinsertsAtOriginalIndexOnFailure(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	seed := []models.Reply{
		{Id: "a", Content: "one", CreatedAt: 3000},
		{Id: "b", Content: "two", CreatedAt: 2000},
		{Id: "c", Content: "three", CreatedAt: 1000},
	}
	reviewCache.SetReplies(ctx, "review-123", seed)

	mockAPI.On("DeleteReply", ctx, "review-123", "b").Return(errors.New("network down"))

	err := svc.DeleteReply(ctx, "review-123", "b")
	assert.Error(t, err)

	final, _, _ := reviewCache.GetReplies(ctx, "review-123")
	assert.Equal(t, seed, final)
}

func TestDeleteReply_UnknownReply(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	reviewCache.SetReplies(ctx, "review-123", []models.Reply{{Id: "a", Content: "one"}})

	err := svc.DeleteReply(ctx, "review-123", "z")
	assert.ErrorIs(t, err, api.ErrItemNotFound)
	mockAPI.AssertNotCalled(t, "DeleteReply", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadReplies_CachesServerOrder(t *testing.T) {
	svc, mockAPI, reviewCache, reviewHub, _ := setupService(t)
	ctx := context.Background()

	fromServer := []models.Reply{
		{Id: "server-2", Content: "newer", CreatedAt: 2000},
		{Id: "server-1", Content: "older", CreatedAt: 1000},
	}
	mockAPI.On("GetReplies", ctx, "review-123").Return(fromServer, nil)

	notified := false
	unsubscribe := reviewHub.Subscribe("review:review-123:replies", func() { notified = true })
	defer unsubscribe()

	replies, err := svc.LoadReplies(ctx, "review-123")
	assert.NoError(t, err)
	assert.Equal(t, fromServer, replies)
	assert.True(t, notified)

	cached, found, _ := reviewCache.GetReplies(ctx, "review-123")
	assert.True(t, found)
	assert.Equal(t, fromServer, cached)
}

func TestAddReply_TemporaryIdsAreUnique(t *testing.T) {
	svc, mockAPI, reviewCache, _, _ := setupService(t)
	ctx := context.Background()

	var seen []string
	mockAPI.On("PostReply", mock.Anything, "review-123", mock.Anything).Run(func(args mock.Arguments) {
		midFlight, _, _ := reviewCache.GetReplies(ctx, "review-123")
		seen = append(seen, midFlight[0].Id)
	}).Return(models.Reply{}, errors.New("network down"))

	svc.AddReply(ctx, "review-123", "one")
	svc.AddReply(ctx, "review-123", "two")

	if assert.Len(t, seen, 2) {
		assert.NotEqual(t, seen[0], seen[1])
	}
}
