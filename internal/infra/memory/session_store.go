package memory

import (
	"context"
	"sort"
	"sync"

	"fanbase-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository,
// used by tests and DB-less dev runs.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.QuizSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.QuizSession)}
}

func (s *SessionStore) GetSession(_ context.Context, sessionID string) (domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) CreateSession(_ context.Context, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
	return nil
}

func (s *SessionStore) UpdateSession(_ context.Context, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *SessionStore) SessionsByUser(_ context.Context, userID string) ([]domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []domain.QuizSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})
	return sessions, nil
}

func (s *SessionStore) CompletedScores(_ context.Context) ([]domain.UserScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	completed := make([]domain.QuizSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.Completed && session.UserID != "" {
			completed = append(completed, session)
		}
	}
	// map iteration order is random; creation order keeps aggregation stable.
	sort.Slice(completed, func(i, j int) bool {
		if !completed[i].CreatedAt.Equal(completed[j].CreatedAt) {
			return completed[i].CreatedAt.Before(completed[j].CreatedAt)
		}
		return completed[i].SessionID < completed[j].SessionID
	})
	scores := make([]domain.UserScore, 0, len(completed))
	for _, session := range completed {
		scores = append(scores, domain.UserScore{UserID: session.UserID, Score: session.Score})
	}
	return scores, nil
}
