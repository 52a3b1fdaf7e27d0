package memory

import (
	"context"
	"sync"

	"fanbase-quiz-service/internal/domain"
)

// LeaderboardStore is an in-memory implementation of
// app.LeaderboardRepository. Entries list in first-completion order.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries map[string]domain.LeaderboardEntry
	order   []string
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{entries: make(map[string]domain.LeaderboardEntry)}
}

func (s *LeaderboardStore) GetEntry(_ context.Context, userID string) (domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[userID]
	if !ok {
		return domain.LeaderboardEntry{}, domain.ErrEntryNotFound
	}
	return entry, nil
}

func (s *LeaderboardStore) UpsertEntry(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.UserID]; !ok {
		s.order = append(s.order, entry.UserID)
	}
	s.entries[entry.UserID] = entry
	return nil
}

func (s *LeaderboardStore) ListEntries(_ context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.order))
	for _, userID := range s.order {
		entries = append(entries, s.entries[userID])
	}
	return entries, nil
}
