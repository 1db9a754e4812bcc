package dto

// HintRequest asks for a progressive hint on the current problem.
type HintRequest struct {
	InterviewSlug string `json:"interview_slug" validate:"required"`
	CandidateID   string `json:"candidate_id" validate:"required"`
	Problem       string `json:"problem" validate:"required"`
	Code          string `json:"code" validate:"required"`
}

// HintResponse carries the generated hint back to the editor. The escalation
// level is persisted with the hint event but not part of the client contract.
type HintResponse struct {
	Hint string `json:"hint"`
}
