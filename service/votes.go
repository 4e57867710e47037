package service

import (
	"context"
	"log"

	"github.com/okvist/localspot/hub"
	"github.com/okvist/localspot/models"
)

func (s *Service) LoadHelpful(ctx context.Context, reviewId string) (models.VoteState, error) {
	marked, err := s.API.GetHelpful(ctx, reviewId)
	if err != nil {
		return models.VoteState{}, err
	}
	count, err := s.API.GetHelpfulCount(ctx, reviewId)
	if err != nil {
		return models.VoteState{}, err
	}

	state := models.VoteState{Count: count, Marked: marked}
	if err := s.Cache.SetVoteState(ctx, reviewId, state); err != nil {
		log.Printf("Failed to cache vote state for review %s: %v", reviewId, err)
	}
	s.Hub.Notify(hub.VoteKey(reviewId))
	return state, nil
}

// ToggleHelpful flips the current viewer's helpful vote. The optimistic
// state is visible to every subscriber before the request is issued; on
// failure the pre-toggle snapshot is restored exactly.
func (s *Service) ToggleHelpful(ctx context.Context, reviewId string) error {
	if err := s.authGuard(); err != nil {
		return err
	}

	key := hub.VoteKey(reviewId)
	if err := s.beginMutation(key); err != nil {
		return err
	}
	defer s.endMutation(key)

	prev, found, err := s.Cache.GetVoteState(ctx, reviewId)
	if err != nil {
		log.Printf("Vote state read failed for review %s: %v", reviewId, err)
		found = false
	}
	if !found {
		prev = models.VoteState{}
	}

	next := models.VoteState{Marked: !prev.Marked}
	if next.Marked {
		next.Count = prev.Count + 1
	} else {
		next.Count = prev.Count - 1
		if next.Count < 0 {
			next.Count = 0
		}
	}

	if err := s.Cache.SetVoteState(ctx, reviewId, next); err != nil {
		return err
	}
	s.Hub.Notify(key)

	if next.Marked {
		err = s.API.MarkHelpful(ctx, reviewId)
	} else {
		err = s.API.UnmarkHelpful(ctx, reviewId)
	}
	if err != nil {
		if cerr := s.Cache.SetVoteState(ctx, reviewId, prev); cerr != nil {
			log.Printf("Failed to roll back vote state for review %s: %v", reviewId, cerr)
		}
		s.Hub.Notify(key)
		return err
	}

	// Concurrent voters can move the aggregate while our request was in
	// flight; the server count wins when it disagrees. A failed reconcile
	// read leaves the optimistic value standing.
	if count, rerr := s.API.GetHelpfulCount(ctx, reviewId); rerr == nil && count != next.Count {
		next.Count = count
		if cerr := s.Cache.SetVoteState(ctx, reviewId, next); cerr != nil {
			log.Printf("Failed to reconcile vote count for review %s: %v", reviewId, cerr)
		}
		s.Hub.Notify(key)
	}

	return nil
}
