package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"fanbase-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const poolKey = "fanquiz:questions"

// QuestionLoader fetches the question pool from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionSource caches the question pool as one JSON blob in Redis and
// falls back to the loader on cache miss. Shuffling happens per request in
// the service, so every instance can share the cached pool.
type QuestionSource struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionSource(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionSource {
	return &QuestionSource{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionSource) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if pool, ok := s.cached(ctx); ok {
		return pool, nil
	}

	result, err, _ := s.sf.Do(poolKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := s.cached(ctx); ok {
			return pool, nil
		}

		pool, err := s.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(pool); err == nil {
			// best-effort: a failed cache write only costs the next caller a reload
			_ = s.client.Set(ctx, poolKey, data, s.ttlWithJitter()).Err()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (s *QuestionSource) cached(ctx context.Context) ([]domain.Question, bool) {
	data, err := s.client.Get(ctx, poolKey).Bytes()
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, false
	}
	return pool, true
}

func (s *QuestionSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
