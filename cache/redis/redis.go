package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/okvist/localspot/models"
	"github.com/redis/go-redis/v9"
)

// RedisReviewCache backs the shared cache with redis for deployments where
// several instances must observe the same last-known server state.
type RedisReviewCache struct {
	client redis.UniversalClient
}

func NewRedisReviewCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisReviewCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// Managed redis endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisReviewCache{client: client}, nil
}

// Helper functions to generate redis keys with hash tags for cluster compatibility
func buildVoteKey(reviewId string) string {
	return "review:{" + reviewId + "}:helpful"
}

func buildRepliesKey(reviewId string) string {
	return "review:{" + reviewId + "}:replies"
}

func buildPreviewKey(businessId string) string {
	return "business:{" + businessId + "}:preview"
}

const cacheTTL = 10 * time.Minute

func (redisCache *RedisReviewCache) GetVoteState(ctx context.Context, reviewId string) (models.VoteState, bool, error) {
	val, err := redisCache.client.Get(ctx, buildVoteKey(reviewId)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return models.VoteState{}, false, nil
		}
		return models.VoteState{}, false, err
	}
	var state models.VoteState
	if err := json.Unmarshal(val, &state); err != nil {
		return models.VoteState{}, false, err
	}
	return state, true, nil
}

func (redisCache *RedisReviewCache) SetVoteState(ctx context.Context, reviewId string, state models.VoteState) error {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return redisCache.client.Set(ctx, buildVoteKey(reviewId), stateBytes, cacheTTL).Err()
}

func (redisCache *RedisReviewCache) GetReplies(ctx context.Context, reviewId string) ([]models.Reply, bool, error) {
	val, err := redisCache.client.Get(ctx, buildRepliesKey(reviewId)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var replies []models.Reply
	if err := json.Unmarshal(val, &replies); err != nil {
		return nil, false, err
	}
	return replies, true, nil
}

func (redisCache *RedisReviewCache) SetReplies(ctx context.Context, reviewId string, replies []models.Reply) error {
	repliesBytes, err := json.Marshal(replies)
	if err != nil {
		return err
	}
	return redisCache.client.Set(ctx, buildRepliesKey(reviewId), repliesBytes, cacheTTL).Err()
}

// A nil preview serializes to the JSON literal "null", which keeps the
// fetched-but-absent marker distinct from a missing key.
func (redisCache *RedisReviewCache) GetPreview(ctx context.Context, businessId string) (*models.ReviewPreview, bool, error) {
	val, err := redisCache.client.Get(ctx, buildPreviewKey(businessId)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var preview *models.ReviewPreview
	if err := json.Unmarshal(val, &preview); err != nil {
		return nil, false, err
	}
	return preview, true, nil
}

func (redisCache *RedisReviewCache) SetPreview(ctx context.Context, businessId string, preview *models.ReviewPreview) error {
	previewBytes, err := json.Marshal(preview)
	if err != nil {
		return err
	}
	return redisCache.client.Set(ctx, buildPreviewKey(businessId), previewBytes, cacheTTL).Err()
}
