package dto

// ExecutionRequest submits candidate code for a sandboxed run.
type ExecutionRequest struct {
	InterviewSlug string `json:"interview_slug" validate:"required"`
	CandidateID   string `json:"candidate_id" validate:"required"`
	Language      string `json:"language" validate:"required"`
	Code          string `json:"code" validate:"required,min=1"`
}

// ExecutionResponse reports the outcome of a sandboxed run.
type ExecutionResponse struct {
	Status          string `json:"status"`
	Output          string `json:"output"`
	Error           string `json:"error"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	MemoryKB        int64  `json:"memory_kb"`
}

// FollowUpRequest asks for the interviewer's next spoken line after a run.
type FollowUpRequest struct {
	Code   string `json:"code" validate:"required"`
	Status string `json:"status" validate:"required"`
	Output string `json:"output"`
	Error  string `json:"error"`
}

// FollowUpResponse carries the generated spoken line.
type FollowUpResponse struct {
	FollowUp string `json:"follow_up"`
}

// ProblemRequest asks for a freshly generated coding problem.
type ProblemRequest struct {
	Topic      string `json:"topic" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// ProblemResponse carries the generated problem statement.
type ProblemResponse struct {
	Problem string `json:"problem"`
}
