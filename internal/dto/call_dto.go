package dto

// RegisterCallRequest starts a voice session for an interview.
type RegisterCallRequest struct {
	InterviewSlug string            `json:"interview_slug" validate:"required"`
	CandidateID   string            `json:"candidate_id" validate:"required"`
	DynamicData   map[string]string `json:"dynamic_data"`
}

// RegisterCallResponse returns the web-call credentials to the browser client.
type RegisterCallResponse struct {
	CallID      string `json:"call_id"`
	AccessToken string `json:"access_token"`
	AgentID     string `json:"agent_id"`
}

// VoiceTurnRequest is the transcription webhook payload for one spoken turn.
type VoiceTurnRequest struct {
	InterviewSlug string `json:"interview_slug" validate:"required"`
	CandidateID   string `json:"candidate_id" validate:"required"`
	Speaker       string `json:"speaker" validate:"omitempty,oneof=agent candidate"`
	Text          string `json:"text" validate:"required"`
}
