package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fanbase-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SessionStore persists quiz sessions in the quiz_sessions table. The fixed
// question set and the answer history are JSONB documents; progress fields
// are plain columns so the leaderboard can aggregate without unmarshalling.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (domain.QuizSession, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT session_id, user_id, questions, current_question, score, completed, answer_history, created_at
		 FROM quiz_sessions WHERE session_id=$1`, sessionID)
	session, err := scanSession(row)
	if err == pgx.ErrNoRows {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) CreateSession(ctx context.Context, session domain.QuizSession) error {
	questions, history, err := marshalDocs(session)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_sessions (session_id, user_id, questions, current_question, score, completed, answer_history, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.SessionID, nullable(session.UserID), questions,
		session.CurrentQuestion, session.Score, session.Completed, history, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UpdateSession writes progress, score, completion flag and history in a
// single statement so a session is never observed with history out of step
// with its index.
func (s *SessionStore) UpdateSession(ctx context.Context, session domain.QuizSession) error {
	_, history, err := marshalDocs(session)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quiz_sessions
		 SET current_question=$2, score=$3, completed=$4, answer_history=$5
		 WHERE session_id=$1`,
		session.SessionID, session.CurrentQuestion, session.Score, session.Completed, history)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) SessionsByUser(ctx context.Context, userID string) ([]domain.QuizSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, user_id, questions, current_question, score, completed, answer_history, created_at
		 FROM quiz_sessions WHERE user_id=$1 ORDER BY created_at DESC, session_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.QuizSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionStore) CompletedScores(ctx context.Context) ([]domain.UserScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, score FROM quiz_sessions
		 WHERE completed AND user_id IS NOT NULL
		 ORDER BY created_at, session_id`)
	if err != nil {
		return nil, fmt.Errorf("completed scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.UserScore
	for rows.Next() {
		var score domain.UserScore
		if err := rows.Scan(&score.UserID, &score.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completed scores: %w", err)
	}
	return scores, nil
}

func scanSession(row pgx.Row) (domain.QuizSession, error) {
	var (
		session   domain.QuizSession
		userID    *string
		questions []byte
		history   []byte
		createdAt time.Time
	)
	err := row.Scan(&session.SessionID, &userID, &questions,
		&session.CurrentQuestion, &session.Score, &session.Completed, &history, &createdAt)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if userID != nil {
		session.UserID = *userID
	}
	if err := json.Unmarshal(questions, &session.Questions); err != nil {
		return domain.QuizSession{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(history, &session.AnswerHistory); err != nil {
		return domain.QuizSession{}, fmt.Errorf("unmarshal answer history: %w", err)
	}
	session.CreatedAt = createdAt
	return session, nil
}

func marshalDocs(session domain.QuizSession) (questions, history []byte, err error) {
	questions, err = json.Marshal(session.Questions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal questions: %w", err)
	}
	if session.AnswerHistory == nil {
		session.AnswerHistory = []domain.AnswerRecord{}
	}
	history, err = json.Marshal(session.AnswerHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal answer history: %w", err)
	}
	return questions, history, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
