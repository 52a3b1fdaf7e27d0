package app

import (
	"fmt"
	"math/rand"
	"testing"

	"fanbase-quiz-service/internal/domain"
)

func TestShuffleDoesNotMutateInput(t *testing.T) {
	pool := numberedQuestions(8)
	rnd := rand.New(rand.NewSource(1))

	shuffled := shuffleQuestions(rnd, pool)
	if len(shuffled) != len(pool) {
		t.Fatalf("length changed: %d", len(shuffled))
	}
	for i := range pool {
		if pool[i].Question != fmt.Sprintf("q%d", i) {
			t.Fatalf("input mutated at %d: %s", i, pool[i].Question)
		}
	}

	seen := make(map[string]bool, len(shuffled))
	for _, q := range shuffled {
		seen[q.Question] = true
	}
	if len(seen) != len(pool) {
		t.Fatalf("shuffle lost or duplicated questions: %d unique", len(seen))
	}
}

func TestShuffleIsRoughlyUniform(t *testing.T) {
	const (
		size   = 6
		trials = 30000
	)
	pool := numberedQuestions(size)
	rnd := rand.New(rand.NewSource(99))

	// counts[p] = how often question "q0" landed at position p.
	counts := make([]int, size)
	for i := 0; i < trials; i++ {
		shuffled := shuffleQuestions(rnd, pool)
		for p, q := range shuffled {
			if q.Question == "q0" {
				counts[p]++
				break
			}
		}
	}

	expected := float64(trials) / float64(size)
	for p, count := range counts {
		if float64(count) < expected*0.9 || float64(count) > expected*1.1 {
			t.Fatalf("position %d frequency %d outside 10%% of expected %.0f", p, count, expected)
		}
	}
}

func numberedQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			Question:      fmt.Sprintf("q%d", i),
			Options:       []string{"a", "b"},
			CorrectAnswer: "a",
		})
	}
	return questions
}
