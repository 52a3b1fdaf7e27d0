package memory

import (
	"context"
	"testing"
	"time"

	"fanbase-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, err := store.GetSession(ctx, "s1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	session := domain.QuizSession{
		SessionID: "s1",
		UserID:    "u1",
		Questions: []domain.Question{{Question: "q", Options: []string{"a"}, CorrectAnswer: "a"}},
		CreatedAt: time.Now(),
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.SessionID != "s1" || loaded.UserID != "u1" {
		t.Fatalf("unexpected session: %+v", loaded)
	}

	loaded.Score = 1
	loaded.Completed = true
	if err := store.UpdateSession(ctx, loaded); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := store.GetSession(ctx, "s1")
	if updated.Score != 1 || !updated.Completed {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := store.UpdateSession(ctx, domain.QuizSession{SessionID: "missing"}); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound on missing update, got %v", err)
	}
}

func TestCompletedScoresOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	add := func(id, userID string, score int, offset time.Duration, completed bool) {
		_ = store.CreateSession(ctx, domain.QuizSession{
			SessionID: id,
			UserID:    userID,
			Score:     score,
			Completed: completed,
			CreatedAt: base.Add(offset),
		})
	}
	add("s3", "u3", 3, 3*time.Minute, true)
	add("s1", "u1", 1, time.Minute, true)
	add("s2", "u2", 2, 2*time.Minute, false)
	add("s4", "", 4, 4*time.Minute, true) // anonymous never ranks

	scores, err := store.CompletedScores(ctx)
	if err != nil {
		t.Fatalf("completed scores: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].UserID != "u1" || scores[1].UserID != "u3" {
		t.Fatalf("unexpected order: %+v", scores)
	}
}
