package app

import (
	"math/rand"

	"fanbase-quiz-service/internal/domain"
)

// shuffleQuestions returns a copy of questions in uniformly random order
// (Fisher-Yates, every permutation equally likely). The input is never
// mutated; cached pools stay in their stored order.
func shuffleQuestions(rnd *rand.Rand, questions []domain.Question) []domain.Question {
	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
