package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/okvist/localspot/api"
	"github.com/okvist/localspot/hub"
	"github.com/okvist/localspot/models"
)

const tempIdPrefix = "tmp-"

func newTempReplyId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return tempIdPrefix + strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return tempIdPrefix + id.String()
}

// IsTemporaryId reports whether id was minted client-side for an
// optimistic entry the server has not confirmed.
func IsTemporaryId(id string) bool {
	return strings.HasPrefix(id, tempIdPrefix)
}

func (s *Service) LoadReplies(ctx context.Context, reviewId string) ([]models.Reply, error) {
	replies, err := s.API.GetReplies(ctx, reviewId)
	if err != nil {
		return nil, err
	}
	// Server order is preserved as-is (newest-first).
	if err := s.Cache.SetReplies(ctx, reviewId, replies); err != nil {
		log.Printf("Failed to cache replies for review %s: %v", reviewId, err)
	}
	s.Hub.Notify(hub.RepliesKey(reviewId))
	return replies, nil
}

// AddReply inserts an optimistic entry with a temporary id at the head of
// the cached list, then replaces it in place with the server-confirmed
// reply, or removes it if the request fails.
func (s *Service) AddReply(ctx context.Context, reviewId string, content string) (models.Reply, error) {
	if err := s.authGuard(); err != nil {
		return models.Reply{}, err
	}
	content, err := ValidateReplyContent(content)
	if err != nil {
		return models.Reply{}, err
	}
	if err := ValidateReviewId(reviewId); err != nil {
		return models.Reply{}, err
	}

	key := hub.RepliesKey(reviewId)
	temp := models.Reply{
		Id:        newTempReplyId(),
		Content:   content,
		AuthorId:  s.Session.UserId,
		CreatedAt: time.Now().UnixMilli(),
	}

	current, _, cerr := s.Cache.GetReplies(ctx, reviewId)
	if cerr != nil {
		log.Printf("Replies read failed for review %s: %v", reviewId, cerr)
	}
	next := append([]models.Reply{temp}, current...)
	if err := s.Cache.SetReplies(ctx, reviewId, next); err != nil {
		return models.Reply{}, err
	}
	s.Hub.Notify(key)

	committed, err := s.API.PostReply(ctx, reviewId, content)
	if err != nil {
		s.removeReply(ctx, reviewId, temp.Id)
		s.Hub.Notify(key)
		return models.Reply{}, err
	}

	s.replaceReply(ctx, reviewId, temp.Id, committed)
	s.Hub.Notify(key)
	return committed, nil
}

// UpdateReply optimistically swaps the entry's content and restores the
// prior content if the request fails.
func (s *Service) UpdateReply(ctx context.Context, reviewId string, replyId string, content string) error {
	if err := s.authGuard(); err != nil {
		return err
	}
	content, err := ValidateReplyContent(content)
	if err != nil {
		return err
	}

	key := hub.RepliesKey(reviewId)
	current, _, cerr := s.Cache.GetReplies(ctx, reviewId)
	if cerr != nil {
		log.Printf("Replies read failed for review %s: %v", reviewId, cerr)
	}

	prior := ""
	found := false
	for i := range current {
		if current[i].Id == replyId {
			prior = current[i].Content
			current[i].Content = content
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: reply %s", api.ErrItemNotFound, replyId)
	}

	if err := s.Cache.SetReplies(ctx, reviewId, current); err != nil {
		return err
	}
	s.Hub.Notify(key)

	committed, err := s.API.PutReply(ctx, reviewId, replyId, content)
	if err != nil {
		s.restoreReplyContent(ctx, reviewId, replyId, prior)
		s.Hub.Notify(key)
		return err
	}

	// The server copy may carry an updated timestamp; keep it.
	s.replaceReply(ctx, reviewId, replyId, committed)
	s.Hub.Notify(key)
	return nil
}

// DeleteReply optimistically removes the entry and re-inserts it at its
// original index if the request fails. Positions of unrelated entries are
// never reshuffled.
func (s *Service) DeleteReply(ctx context.Context, reviewId string, replyId string) error {
	if err := s.authGuard(); err != nil {
		return err
	}

	key := hub.RepliesKey(reviewId)
	removed, index, found := s.removeReply(ctx, reviewId, replyId)
	if !found {
		return fmt.Errorf("%w: reply %s", api.ErrItemNotFound, replyId)
	}
	s.Hub.Notify(key)

	if err := s.API.DeleteReply(ctx, reviewId, replyId); err != nil {
		s.insertReplyAt(ctx, reviewId, removed, index)
		s.Hub.Notify(key)
		return err
	}
	return nil
}

func (s *Service) replaceReply(ctx context.Context, reviewId string, oldId string, committed models.Reply) {
	current, _, _ := s.Cache.GetReplies(ctx, reviewId)
	for i := range current {
		if current[i].Id == oldId {
			current[i] = committed
			break
		}
	}
	if err := s.Cache.SetReplies(ctx, reviewId, current); err != nil {
		log.Printf("Failed to commit reply %s for review %s: %v", committed.Id, reviewId, err)
	}
}

func (s *Service) restoreReplyContent(ctx context.Context, reviewId string, replyId string, content string) {
	current, _, _ := s.Cache.GetReplies(ctx, reviewId)
	for i := range current {
		if current[i].Id == replyId {
			current[i].Content = content
			break
		}
	}
	if err := s.Cache.SetReplies(ctx, reviewId, current); err != nil {
		log.Printf("Failed to restore reply %s for review %s: %v", replyId, reviewId, err)
	}
}

func (s *Service) removeReply(ctx context.Context, reviewId string, replyId string) (models.Reply, int, bool) {
	current, _, _ := s.Cache.GetReplies(ctx, reviewId)
	for i := range current {
		if current[i].Id == replyId {
			removed := current[i]
			next := append(append([]models.Reply{}, current[:i]...), current[i+1:]...)
			if err := s.Cache.SetReplies(ctx, reviewId, next); err != nil {
				log.Printf("Failed to remove reply %s for review %s: %v", replyId, reviewId, err)
			}
			return removed, i, true
		}
	}
	return models.Reply{}, -1, false
}

func (s *Service) insertReplyAt(ctx context.Context, reviewId string, reply models.Reply, index int) {
	current, _, _ := s.Cache.GetReplies(ctx, reviewId)
	if index < 0 {
		index = 0
	}
	if index > len(current) {
		index = len(current)
	}
	next := make([]models.Reply, 0, len(current)+1)
	next = append(next, current[:index]...)
	next = append(next, reply)
	next = append(next, current[index:]...)
	if err := s.Cache.SetReplies(ctx, reviewId, next); err != nil {
		log.Printf("Failed to re-insert reply %s for review %s: %v", reply.Id, reviewId, err)
	}
}
