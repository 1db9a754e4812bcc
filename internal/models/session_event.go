package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SessionEventKind enumerates the event types recorded during a session.
const (
	SessionEventKindVoiceTurn      = "voice_turn"
	SessionEventKindCodeSubmission = "code_submission"
	SessionEventKindHint           = "hint"
)

// SessionEvent is one atomic occurrence within an interview session. Events
// are append-only and immutable; the session timeline is their creation order.
type SessionEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	InterviewID uint           `gorm:"not null;index:idx_session_events_interview" json:"interview_id"`
	CandidateID string         `gorm:"size:128;not null;index:idx_session_events_candidate" json:"candidate_id"`
	Kind        string         `gorm:"size:32;not null;index" json:"kind"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

// VoiceTurnPayload is the payload stored for voice_turn events.
type VoiceTurnPayload struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

// CodeSubmissionPayload is the payload stored for code_submission events.
type CodeSubmissionPayload struct {
	Code            string `json:"code"`
	Language        string `json:"language"`
	Status          string `json:"status"`
	Output          string `json:"output,omitempty"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms,omitempty"`
	MemoryKB        int64  `json:"memory_kb,omitempty"`
}

// HintPayload is the payload stored for hint events.
type HintPayload struct {
	Hint      string `json:"hint"`
	HintLevel string `json:"hintLevel"`
}

// DecodePayload unmarshals the event payload into out.
func (e SessionEvent) DecodePayload(out interface{}) error {
	return json.Unmarshal(e.Payload, out)
}
