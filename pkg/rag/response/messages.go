package response

import "github.com/MarkerAnn/wine-backend/internal/entity"

// NoContextAnswer is returned when retrieval produced no grounding
// material. The model is never called for it, so an outage in the
// generation provider cannot turn "no results" into a 502.
const NoContextAnswer = "I couldn't find any wine reviews matching your question, so I can't give a grounded answer. Try rephrasing or broadening the question."

// Refusal builds the fixed no-context answer.
func Refusal(degraded bool) *entity.Answer {
	return &entity.Answer{
		Text:       NoContextAnswer,
		Citations:  []int64{},
		Confidence: entity.ConfidenceLow,
		Degraded:   degraded,
	}
}
