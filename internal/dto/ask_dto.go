package dto

// AskRequest is the grounded question-answering request body.
type AskRequest struct {
	Question string `json:"question" validate:"required"`
	TopK     int    `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type AskResponse struct {
	Answer     string  `json:"answer"`
	Citations  []int64 `json:"citations"`
	Confidence string  `json:"confidence"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// Stream frame types for the websocket ask endpoint. Chunks carry text as
// it is generated; the final frame carries citations and confidence, which
// only exist once the full answer does.
const (
	StreamFrameChunk = "chunk"
	StreamFrameFinal = "final"
	StreamFrameError = "error"
)

type AskStreamFrame struct {
	Type       string  `json:"type"`
	Content    string  `json:"content,omitempty"`
	Citations  []int64 `json:"citations,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
	Degraded   bool    `json:"degraded,omitempty"`
	Error      string  `json:"error,omitempty"`
}
