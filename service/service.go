package service

import (
	"errors"
	"sync"

	"github.com/okvist/localspot/api"
	"github.com/okvist/localspot/cache"
	"github.com/okvist/localspot/hub"
	"github.com/okvist/localspot/models"
	"github.com/okvist/localspot/worker"
)

// Service coordinates optimistic mutations against the shared cache: a
// local state change is applied and announced before the network request,
// then committed or rolled back when the request resolves.
type Service struct {
	API            api.ReviewAPI
	Cache          cache.ReviewCache
	Hub            *hub.Hub
	PreviewBatcher *worker.PreviewBatcher
	Session        models.Session

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(
	reviewAPI api.ReviewAPI,
	reviewCache cache.ReviewCache,
	reviewHub *hub.Hub,
	previewBatcher *worker.PreviewBatcher,
	session models.Session,
) *Service {
	return &Service{
		API:            reviewAPI,
		Cache:          reviewCache,
		Hub:            reviewHub,
		PreviewBatcher: previewBatcher,
		Session:        session,
		inFlight:       make(map[string]bool),
	}
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrMutationInFlight = errors.New("mutation already in flight for this resource")
)

// beginMutation rejects a second mutation for the same resource while one
// is outstanding, instead of trusting the UI to disable the control.
func (s *Service) beginMutation(resourceKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[resourceKey] {
		return ErrMutationInFlight
	}
	s.inFlight[resourceKey] = true
	return nil
}

func (s *Service) endMutation(resourceKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, resourceKey)
}
