package worker

import (
	"context"
	"log"
	"time"

	"github.com/okvist/localspot/api"
	"github.com/okvist/localspot/cache"
	"github.com/okvist/localspot/hub"
	"golang.org/x/time/rate"
)

const (
	// Debounce window: lets a page of business rows mounting in the same
	// frame coalesce into one request.
	defaultDebounce = 25 * time.Millisecond

	// Rate limiting: 4 flushes per second with a burst of 2
	flushesPerSecond = 4
	flushBurst       = 2
)

// PreviewBatcher coalesces individual preview lookups into batched
// requests of at most api.MaxPreviewBatch ids. A single goroutine owns the
// pending set and performs flushes sequentially, so there is never more
// than one batch request outstanding; ids arriving mid-flush wait in the
// channel for the next cycle.
type PreviewBatcher struct {
	RequestCh   chan string
	reviewAPI   api.ReviewAPI
	reviewCache cache.ReviewCache
	reviewHub   *hub.Hub
	debounce    time.Duration
	limiter     *rate.Limiter
}

func NewPreviewBatcher(reviewAPI api.ReviewAPI, reviewCache cache.ReviewCache, reviewHub *hub.Hub, debounce time.Duration) *PreviewBatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &PreviewBatcher{
		RequestCh:   make(chan string, 1024), // buffer to absorb a page of rows mounting at once
		reviewAPI:   reviewAPI,
		reviewCache: reviewCache,
		reviewHub:   reviewHub,
		debounce:    debounce,
		limiter:     rate.NewLimiter(rate.Limit(flushesPerSecond), flushBurst),
	}
}

func (b *PreviewBatcher) Request(businessId string) {
	b.RequestCh <- businessId
}

func (b *PreviewBatcher) Run(shutdownCtx context.Context) {
	pending := make([]string, 0, api.MaxPreviewBatch)
	pendingSet := make(map[string]struct{})

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	disarm := func() {
		if armed && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		armed = false
	}

	// Fail open: a preview is a non-critical enhancement, so a failed
	// batch caches every id as "no preview" instead of retrying.
	failOpen := func(businessIds []string) {
		for _, businessId := range businessIds {
			if err := b.reviewCache.SetPreview(context.Background(), businessId, nil); err != nil {
				log.Printf("Failed to cache absent preview for business %s: %v", businessId, err)
			}
			b.reviewHub.Notify(hub.PreviewKey(businessId))
		}
	}

	flush := func() {
		for len(pending) > 0 {
			n := len(pending)
			if n > api.MaxPreviewBatch {
				n = api.MaxPreviewBatch
			}
			chunk := append([]string(nil), pending[:n]...)
			pending = pending[n:]

			_ = b.limiter.Wait(context.Background())

			previews, err := b.reviewAPI.FetchPreviews(context.Background(), chunk)
			if err != nil {
				log.Printf("Preview batch of %d ids failed, caching as absent: %v", len(chunk), err)
				failOpen(chunk)
			} else {
				for _, businessId := range chunk {
					if cerr := b.reviewCache.SetPreview(context.Background(), businessId, previews[businessId]); cerr != nil {
						log.Printf("Failed to cache preview for business %s: %v", businessId, cerr)
					}
					b.reviewHub.Notify(hub.PreviewKey(businessId))
				}
			}

			for _, businessId := range chunk {
				delete(pendingSet, businessId)
			}
		}
	}

	for {
		select {
		case businessId := <-b.RequestCh:
			if _, queued := pendingSet[businessId]; queued {
				continue
			}
			if _, found, err := b.reviewCache.GetPreview(context.Background(), businessId); err == nil && found {
				// Resolved by an earlier flush while this request sat in
				// the channel.
				continue
			}
			pendingSet[businessId] = struct{}{}
			pending = append(pending, businessId)
			if !armed {
				timer.Reset(b.debounce)
				armed = true
			}
			if len(pending) >= api.MaxPreviewBatch {
				disarm()
				flush()
			}

		case <-timer.C:
			armed = false
			flush()

		case <-shutdownCtx.Done():
			disarm()
			flush()
			return
		}
	}
}
