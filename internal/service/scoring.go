package service

import (
	"github.com/google/uuid"
	"github.com/testmate/testmate-backend/internal/model"
)

// Score computes the total points for a submitted answer set against a
// question bank. The submission may contain duplicate entries for the same
// question; the last entry in submission order wins, which is achieved by
// scanning from the end and skipping already-seen question references.
// References missing from the bank are skipped, not scored. One point per
// correct answer, no partial credit, no negative scoring.
func Score(answers []model.Answer, bank map[uuid.UUID]model.Question) int {
	seen := make(map[uuid.UUID]struct{}, len(answers))
	total := 0

	for i := len(answers) - 1; i >= 0; i-- {
		a := answers[i]
		if _, ok := seen[a.QuestionID]; ok {
			continue
		}
		seen[a.QuestionID] = struct{}{}

		q, ok := bank[a.QuestionID]
		if !ok {
			continue
		}
		// Exactly one of AnswerText/AnswerImage is populated; the guard
		// keeps a blank submission from matching the unpopulated field.
		if a.Chosen == "" {
			continue
		}
		if a.Chosen == q.AnswerText || a.Chosen == q.AnswerImage {
			total++
		}
	}
	return total
}
