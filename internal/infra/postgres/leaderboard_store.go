package postgres

import (
	"context"
	"fmt"

	"fanbase-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// LeaderboardStore persists per-user cumulative entries in quiz_leaderboard.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

func (s *LeaderboardStore) GetEntry(ctx context.Context, userID string) (domain.LeaderboardEntry, error) {
	var entry domain.LeaderboardEntry
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, username, total_score, quizzes_completed
		 FROM quiz_leaderboard WHERE user_id=$1`, userID).
		Scan(&entry.UserID, &entry.Username, &entry.TotalScore, &entry.QuizzesCompleted)
	if err == pgx.ErrNoRows {
		return domain.LeaderboardEntry{}, domain.ErrEntryNotFound
	}
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

func (s *LeaderboardStore) UpsertEntry(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_leaderboard (user_id, username, total_score, quizzes_completed, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET username=EXCLUDED.username,
		     total_score=EXCLUDED.total_score,
		     quizzes_completed=EXCLUDED.quizzes_completed,
		     updated_at=now()`,
		entry.UserID, entry.Username, entry.TotalScore, entry.QuizzesCompleted)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func (s *LeaderboardStore) ListEntries(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, username, total_score, quizzes_completed
		 FROM quiz_leaderboard ORDER BY total_score DESC, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.TotalScore, &entry.QuizzesCompleted); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}
