package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/config"
	"github.com/testmate/testmate-backend/internal/model"
)

// PaperCache caches the answer-stripped paper per quiz. Misses and cache
// failures are never fatal; callers fall through to the database.
type PaperCache interface {
	Get(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, bool)
	Set(ctx context.Context, paper *model.QuizPaper)
	Invalidate(ctx context.Context, quizID uuid.UUID)
}

// RedisPaperCache is the Redis-backed PaperCache.
type RedisPaperCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

var _ PaperCache = (*RedisPaperCache)(nil)

// NewRedisPaperCache creates a Redis-backed paper cache.
func NewRedisPaperCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisPaperCache {
	return &RedisPaperCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "paper_cache").Logger(),
	}
}

func (c *RedisPaperCache) Get(ctx context.Context, quizID uuid.UUID) (*model.QuizPaper, bool) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.QuizPaperKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("paper cache read failed")
		}
		return nil, false
	}
	paper := &model.QuizPaper{}
	if err := json.Unmarshal(raw, paper); err != nil {
		c.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("paper cache payload corrupt")
		return nil, false
	}
	return paper, true
}

func (c *RedisPaperCache) Set(ctx context.Context, paper *model.QuizPaper) {
	raw, err := json.Marshal(paper)
	if err != nil {
		c.log.Warn().Err(err).Msg("paper cache marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, config.CacheKey.QuizPaperKey(paper.QuizID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("quiz_id", paper.QuizID.String()).Msg("paper cache write failed")
	}
}

func (c *RedisPaperCache) Invalidate(ctx context.Context, quizID uuid.UUID) {
	if err := c.rdb.Del(ctx, config.CacheKey.QuizPaperKey(quizID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("paper cache invalidate failed")
	}
}
