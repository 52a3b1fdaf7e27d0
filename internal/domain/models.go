package domain

import "time"

// Question is a single multiple-choice question from the fan quiz pool.
// CorrectAnswer is always one of Options; the pool is sourced externally and
// never mutated by this service.
type Question struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Image            string   `json:"image,omitempty"`
}

// AnswerRecord is a write-once entry in a session's answer history.
type AnswerRecord struct {
	SessionID     string `json:"sessionId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

// QuizSession is one play-through of a fixed, ordered question set.
// At rest len(AnswerHistory) == CurrentQuestion and Score equals the number
// of correct history entries.
type QuizSession struct {
	SessionID       string         `json:"sessionId"`
	UserID          string         `json:"userId,omitempty"` // empty for anonymous play
	Questions       []Question     `json:"questions"`
	CurrentQuestion int            `json:"currentQuestion"`
	Score           int            `json:"score"`
	Completed       bool           `json:"completed"`
	AnswerHistory   []AnswerRecord `json:"answerHistory"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// AnswerResult reports the outcome of a single submission alongside the
// updated session.
type AnswerResult struct {
	Correct       bool        `json:"correct"`
	CorrectAnswer string      `json:"correctAnswer"`
	Session       QuizSession `json:"session"`
}

// LeaderboardEntry is the per-user cumulative record maintained across
// completed sessions.
type LeaderboardEntry struct {
	UserID           string `json:"userId"`
	Username         string `json:"username"`
	TotalScore       int    `json:"totalScore"`
	QuizzesCompleted int    `json:"quizzesCompleted"`
}

// RankedEntry is a leaderboard entry with its position after sorting.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}

// Leaderboard is the ordered scoreboard derived from completed sessions.
type Leaderboard struct {
	Entries   []RankedEntry `json:"entries"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// UserStats is the calling user's own block on the stats panel.
type UserStats struct {
	Rank             int `json:"rank"`
	TotalScore       int `json:"totalScore"`
	QuizzesCompleted int `json:"quizzesCompleted"`
}

// LeaderboardStats summarizes the scoreboard for the stats panel.
type LeaderboardStats struct {
	TotalUsers   int        `json:"totalUsers"`
	TotalQuizzes int        `json:"totalQuizzes"`
	AverageScore float64    `json:"averageScore"`
	TopScore     int        `json:"topScore"`
	UserStats    *UserStats `json:"userStats,omitempty"`
}

// UserScore is a (user, score) pair from one completed session, used when
// recomputing the leaderboard in bulk.
type UserScore struct {
	UserID string
	Score  int
}

// User is an identity-provider subject.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
