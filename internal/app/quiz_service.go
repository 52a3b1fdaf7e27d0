package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"fanbase-quiz-service/internal/domain"
)

// SessionRepository abstracts how quiz sessions are stored (Postgres,
// in-memory for tests). UpdateSession must persist index, score, completion
// flag and history as a single write.
type SessionRepository interface {
	GetSession(ctx context.Context, sessionID string) (domain.QuizSession, error)
	CreateSession(ctx context.Context, session domain.QuizSession) error
	UpdateSession(ctx context.Context, session domain.QuizSession) error
	SessionsByUser(ctx context.Context, userID string) ([]domain.QuizSession, error)
	CompletedScores(ctx context.Context) ([]domain.UserScore, error)
}

// QuestionSource provides the quiz question pool (from cache/backing store).
type QuestionSource interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

// CompletionQueue receives the post-commit leaderboard update for a finished
// session. Implementations are expected to apply it asynchronously.
type CompletionQueue interface {
	Enqueue(userID string, score int)
}

// QuizService drives the quiz session state machine: get-or-create, answer
// submission, restart, and per-user history.
type QuizService struct {
	sessions    SessionRepository
	questions   QuestionSource
	completions CompletionQueue
	now         func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizService(sessions SessionRepository, questions QuestionSource, completions CompletionQueue) *QuizService {
	return NewQuizServiceWithClock(sessions, questions, completions,
		time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuizServiceWithClock is test-only for deterministic timestamps and
// shuffles.
func NewQuizServiceWithClock(sessions SessionRepository, questions QuestionSource, completions CompletionQueue, now func() time.Time, rnd *rand.Rand) *QuizService {
	return &QuizService{
		sessions:    sessions,
		questions:   questions,
		completions: completions,
		now:         now,
		rnd:         rnd,
	}
}

// Questions returns a freshly shuffled copy of the question pool.
func (s *QuizService) Questions(ctx context.Context) ([]domain.Question, error) {
	pool, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return s.shuffle(pool), nil
}

// GetOrCreateSession returns the session for sessionID if one exists, leaving
// it untouched. Otherwise it draws a shuffled question set and persists a new
// session bound to userID (empty userID means anonymous play). Nothing is
// persisted when the question pool is empty.
//
// Session ids are client-generated UUIDs, so two racing creates for the same
// id are not defended against; last write wins.
func (s *QuizService) GetOrCreateSession(ctx context.Context, sessionID, userID string) (domain.QuizSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if err != domain.ErrSessionNotFound {
		return domain.QuizSession{}, fmt.Errorf("load session: %w", err)
	}

	questions, err := s.Questions(ctx)
	if err != nil {
		return domain.QuizSession{}, err
	}

	session = domain.QuizSession{
		SessionID:       sessionID,
		UserID:          userID,
		Questions:       questions,
		CurrentQuestion: 0,
		Score:           0,
		Completed:       false,
		AnswerHistory:   []domain.AnswerRecord{},
		CreatedAt:       s.now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// SubmitAnswer records the answer for the session's current question and
// advances it. questionIndex is the index the client believes it is
// answering; a mismatch with the server's current question is rejected, so a
// duplicate or out-of-order submission never double-counts.
//
// The whole update (history, score, index, completion flag) is persisted as
// one write; on storage failure nothing is applied and the call is safe to
// retry. The completion transition enqueues exactly one leaderboard update;
// anonymous sessions skip it.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID, userID string, questionIndex int, answer string) (domain.AnswerResult, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if session.UserID != "" && session.UserID != userID {
		return domain.AnswerResult{}, domain.ErrNotSessionOwner
	}
	if session.Completed || session.CurrentQuestion >= len(session.Questions) {
		return domain.AnswerResult{}, domain.ErrSessionCompleted
	}
	if questionIndex != session.CurrentQuestion {
		return domain.AnswerResult{}, domain.ErrAnswerOutOfTurn
	}

	question := session.Questions[session.CurrentQuestion]
	correct := answer == question.CorrectAnswer

	session.AnswerHistory = append(session.AnswerHistory, domain.AnswerRecord{
		SessionID:     sessionID,
		UserAnswer:    answer,
		CorrectAnswer: question.CorrectAnswer,
		Correct:       correct,
	})
	if correct {
		session.Score++
	}
	session.CurrentQuestion++
	wasCompleted := session.Completed
	session.Completed = session.CurrentQuestion == len(session.Questions)

	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return domain.AnswerResult{}, fmt.Errorf("update session: %w", err)
	}

	if session.Completed && !wasCompleted && session.UserID != "" && s.completions != nil {
		s.completions.Enqueue(session.UserID, session.Score)
	}

	return domain.AnswerResult{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Session:       session,
	}, nil
}

// RestartSession zeroes progress and replays the same question order. The
// original question set is deliberately kept; a fresh draw requires a new
// session id.
func (s *QuizService) RestartSession(ctx context.Context, sessionID, userID string) (domain.QuizSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if session.UserID != "" && session.UserID != userID {
		return domain.QuizSession{}, domain.ErrNotSessionOwner
	}

	session.CurrentQuestion = 0
	session.Score = 0
	session.Completed = false
	session.AnswerHistory = []domain.AnswerRecord{}

	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return domain.QuizSession{}, fmt.Errorf("update session: %w", err)
	}
	return session, nil
}

// SessionDetails returns the full session for a post-game summary. The read
// is restricted to the session's owner.
func (s *QuizService) SessionDetails(ctx context.Context, sessionID, userID string) (domain.QuizSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.QuizSession{}, err
	}
	if session.UserID != userID {
		return domain.QuizSession{}, domain.ErrNotSessionOwner
	}
	return session, nil
}

// History lists the user's past sessions, newest first.
func (s *QuizService) History(ctx context.Context, userID string) ([]domain.QuizSession, error) {
	sessions, err := s.sessions.SessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *QuizService) shuffle(questions []domain.Question) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return shuffleQuestions(s.rnd, questions)
}
