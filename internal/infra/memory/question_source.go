package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fanbase-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the question pool from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionSource caches the question pool with a TTL to avoid repeated DB
// hits; shuffling happens per request in the service, so all callers can
// share one cached pool.
type QuestionSource struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	pool      []domain.Question
	expiresAt time.Time
}

func NewQuestionSource(loader QuestionLoader, ttl time.Duration) *QuestionSource {
	return &QuestionSource{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionSource) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	now := s.clock()

	s.mu.RLock()
	if s.pool != nil && s.expiresAt.After(now) {
		pool := s.pool
		s.mu.RUnlock()
		return pool, nil
	}
	s.mu.RUnlock()

	result, err, _ := s.sf.Do("questions", func() (interface{}, error) {
		now := s.clock()
		s.mu.RLock()
		if s.pool != nil && s.expiresAt.After(now) {
			pool := s.pool
			s.mu.RUnlock()
			return pool, nil
		}
		s.mu.RUnlock()

		pool, err := s.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.pool = pool
		s.expiresAt = now.Add(s.ttlWithJitter())
		s.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (s *QuestionSource) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed pool (tests and DB-less dev runs).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
