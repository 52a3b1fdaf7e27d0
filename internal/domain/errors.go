package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for an id and the
	// operation requires one.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted is returned when an answer is submitted to a session
	// that has already answered every question.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrAnswerOutOfTurn is returned when the client-asserted question index
	// does not match the session's current question.
	ErrAnswerOutOfTurn = errors.New("answer does not match current question")
	// ErrNoQuestions is returned when the question pool is empty at session
	// creation time.
	ErrNoQuestions = errors.New("no questions available")
	// ErrNotSessionOwner is returned when a caller reads a session bound to a
	// different user.
	ErrNotSessionOwner = errors.New("session belongs to another user")
	// ErrEntryNotFound is returned when no leaderboard entry exists for a user.
	ErrEntryNotFound = errors.New("leaderboard entry not found")
	// ErrUserNotFound indicates the identity provider does not know the user.
	ErrUserNotFound = errors.New("user not found")
)
