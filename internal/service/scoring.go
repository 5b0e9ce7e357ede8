package service

import "github.com/examify/examify-backend/internal/model"

// ScoreAnswers counts positions where the answer is non-empty and equals the
// question's correct answer. Extra answers are ignored and missing ones score zero.
func ScoreAnswers(questions []model.Question, answers []string) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if answers[i] != "" && answers[i] == q.Answer {
			score++
		}
	}
	return score
}

// IsPassing reports whether score reaches half of total.
func IsPassing(score, total int) bool {
	return float64(score) >= float64(total)/2
}
