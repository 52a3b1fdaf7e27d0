package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fanbase-quiz-service/internal/domain"
)

// fallbackUsername is shown when the identity provider cannot resolve a
// display name at completion time.
const fallbackUsername = "Unknown User"

// LeaderboardRepository abstracts the incrementally maintained per-user
// entries.
type LeaderboardRepository interface {
	GetEntry(ctx context.Context, userID string) (domain.LeaderboardEntry, error)
	UpsertEntry(ctx context.Context, entry domain.LeaderboardEntry) error
	ListEntries(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// IdentityResolver maps identity-provider subject ids to display names.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, userID string) (domain.User, error)
}

// LeaderboardService maintains per-user cumulative entries and derives the
// ranked scoreboard from completed sessions.
type LeaderboardService struct {
	entries  LeaderboardRepository
	sessions SessionRepository
	identity IdentityResolver
	now      func() time.Time
}

func NewLeaderboardService(entries LeaderboardRepository, sessions SessionRepository, identity IdentityResolver) *LeaderboardService {
	return NewLeaderboardServiceWithClock(entries, sessions, identity, time.Now)
}

// NewLeaderboardServiceWithClock is test-only for deterministic timestamps.
func NewLeaderboardServiceWithClock(entries LeaderboardRepository, sessions SessionRepository, identity IdentityResolver, now func() time.Time) *LeaderboardService {
	return &LeaderboardService{
		entries:  entries,
		sessions: sessions,
		identity: identity,
		now:      now,
	}
}

// RecordCompletion adds one completed session to the user's cumulative entry,
// creating it on first completion. The display name is resolved at this
// moment; resolution failure falls back to a placeholder rather than losing
// the score. Callers must invoke this exactly once per false→true completion
// transition; the service itself does not deduplicate.
func (s *LeaderboardService) RecordCompletion(ctx context.Context, userID string, sessionScore int) error {
	entry, err := s.entries.GetEntry(ctx, userID)
	switch err {
	case nil:
	case domain.ErrEntryNotFound:
		entry = domain.LeaderboardEntry{
			UserID:   userID,
			Username: s.resolveUsername(ctx, userID),
		}
	default:
		return fmt.Errorf("load leaderboard entry: %w", err)
	}

	entry.TotalScore += sessionScore
	entry.QuizzesCompleted++

	if err := s.entries.UpsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

// Compute rebuilds the ranked scoreboard from completed sessions. Users are
// aggregated in discovery order and ties keep that order, so repeated calls
// over unchanged data rank identically. Anonymous sessions never rank.
func (s *LeaderboardService) Compute(ctx context.Context) (domain.Leaderboard, error) {
	scores, err := s.sessions.CompletedScores(ctx)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("load completed scores: %w", err)
	}

	usernames, err := s.usernamesByID(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	totals := make(map[string]*domain.LeaderboardEntry)
	order := make([]string, 0, len(scores))
	for _, score := range scores {
		if score.UserID == "" {
			continue
		}
		entry, ok := totals[score.UserID]
		if !ok {
			username := usernames[score.UserID]
			if username == "" {
				username = fallbackUsername
			}
			entry = &domain.LeaderboardEntry{UserID: score.UserID, Username: username}
			totals[score.UserID] = entry
			order = append(order, score.UserID)
		}
		entry.TotalScore += score.Score
		entry.QuizzesCompleted++
	}

	entries := make([]domain.RankedEntry, 0, len(order))
	for _, userID := range order {
		entries = append(entries, domain.RankedEntry{LeaderboardEntry: *totals[userID]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

// Stats summarizes the computed scoreboard; userID, when non-empty, selects
// the caller's own rank block.
func (s *LeaderboardService) Stats(ctx context.Context, userID string) (domain.LeaderboardStats, error) {
	lb, err := s.Compute(ctx)
	if err != nil {
		return domain.LeaderboardStats{}, err
	}

	stats := domain.LeaderboardStats{TotalUsers: len(lb.Entries)}
	totalScore := 0
	for _, entry := range lb.Entries {
		stats.TotalQuizzes += entry.QuizzesCompleted
		totalScore += entry.TotalScore
		if entry.TotalScore > stats.TopScore {
			stats.TopScore = entry.TotalScore
		}
		if userID != "" && entry.UserID == userID {
			stats.UserStats = &domain.UserStats{
				Rank:             entry.Rank,
				TotalScore:       entry.TotalScore,
				QuizzesCompleted: entry.QuizzesCompleted,
			}
		}
	}
	if stats.TotalUsers > 0 {
		stats.AverageScore = float64(totalScore) / float64(stats.TotalUsers)
	}
	return stats, nil
}

func (s *LeaderboardService) usernamesByID(ctx context.Context) (map[string]string, error) {
	entries, err := s.entries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard entries: %w", err)
	}
	usernames := make(map[string]string, len(entries))
	for _, entry := range entries {
		usernames[entry.UserID] = entry.Username
	}
	return usernames, nil
}

func (s *LeaderboardService) resolveUsername(ctx context.Context, userID string) string {
	if s.identity == nil {
		return fallbackUsername
	}
	user, err := s.identity.ResolveUser(ctx, userID)
	if err != nil || user.DisplayName == "" {
		return fallbackUsername
	}
	return user.DisplayName
}
