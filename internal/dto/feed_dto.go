package dto

import (
	"encoding/json"
	"time"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// FeedEventResponse is one session event as streamed to feed subscribers.
type FeedEventResponse struct {
	ID          uint            `json:"id"`
	InterviewID uint            `json:"interview_id"`
	CandidateID string          `json:"candidate_id"`
	Kind        string          `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewFeedEventResponse converts a stored session event into its feed form.
func NewFeedEventResponse(event models.SessionEvent) FeedEventResponse {
	return FeedEventResponse{
		ID:          event.ID,
		InterviewID: event.InterviewID,
		CandidateID: event.CandidateID,
		Kind:        event.Kind,
		Payload:     json.RawMessage(event.Payload),
		CreatedAt:   event.CreatedAt,
	}
}
