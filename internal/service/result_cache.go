package service

import (
	"context"
	"encoding/json"
	"errors"
	"exam_reviewer_backend/internal/model"
	"exam_reviewer_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResultCache 结果写入后不再变化，因此无需失效
type ResultCache interface {
	Get(ctx context.Context, attemptID uint) (*model.Result, bool)
	Set(ctx context.Context, result *model.Result)
}

type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache client 为 nil 时返回空实现
func NewResultCache(client *redis.Client, ttl time.Duration) ResultCache {
	if client == nil {
		return noopResultCache{}
	}
	return &RedisResultCache{client: client, ttl: ttl}
}

func resultCacheKey(attemptID uint) string {
	return fmt.Sprintf("reviewer:result:%d", attemptID)
}

func (c *RedisResultCache) Get(ctx context.Context, attemptID uint) (*model.Result, bool) {
	data, err := c.client.Get(ctx, resultCacheKey(attemptID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("result cache read failed", zap.Uint("attempt_id", attemptID), zap.Error(err))
		}
		return nil, false
	}

	var result model.Result
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Log.Warn("result cache entry corrupt", zap.Uint("attempt_id", attemptID), zap.Error(err))
		return nil, false
	}
	return &result, true
}

func (c *RedisResultCache) Set(ctx context.Context, result *model.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, resultCacheKey(result.ReviewerAttemptID), data, c.ttl).Err(); err != nil {
		logger.Log.Warn("result cache write failed", zap.Uint("attempt_id", result.ReviewerAttemptID), zap.Error(err))
	}
}

type noopResultCache struct{}

func (noopResultCache) Get(context.Context, uint) (*model.Result, bool) { return nil, false }
func (noopResultCache) Set(context.Context, *model.Result)              {}
