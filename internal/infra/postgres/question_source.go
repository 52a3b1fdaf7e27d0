package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"fanbase-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionSource draws a random sample of the question pool from Postgres.
// Each row stores one question as JSONB.
type QuestionSource struct {
	pool  *pgxpool.Pool
	limit int
}

func NewQuestionSource(pool *pgxpool.Pool, limit int) *QuestionSource {
	return &QuestionSource{pool: pool, limit: limit}
}

func (s *QuestionSource) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM questions ORDER BY random() LIMIT $1`, s.limit)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var question domain.Question
		if err := json.Unmarshal(raw, &question); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
