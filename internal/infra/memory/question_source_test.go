package memory

import (
	"context"
	"testing"
	"time"

	"fanbase-quiz-service/internal/domain"
)

func TestQuestionSourceCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(samplePool()),
	}
	source := NewQuestionSource(loader, time.Minute)

	if _, err := source.ListQuestions(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	pool, err := source.ListQuestions(context.Background())
	if err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(pool))
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

func samplePool() []domain.Question {
	return []domain.Question{
		{
			Question:         "In which year did the group debut?",
			Options:          []string{"2015", "2016"},
			CorrectAnswer:    "2016",
			IncorrectAnswers: []string{"2015"},
		},
		{
			Question:         "How many members are in the group?",
			Options:          []string{"4", "5"},
			CorrectAnswer:    "5",
			IncorrectAnswers: []string{"4"},
		},
	}
}
