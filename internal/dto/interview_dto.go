package dto

import (
	"encoding/json"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// InterviewQuestion is one prepared question definition.
type InterviewQuestion struct {
	Question   string `json:"question"`
	FollowUpOn string `json:"follow_up_on,omitempty"`
}

// CreateInterviewRequest is the payload to schedule a new interview.
type CreateInterviewRequest struct {
	Name          string              `json:"name" validate:"required,min=2"`
	Objective     string              `json:"objective"`
	InterviewerID uint                `json:"interviewer_id" validate:"required,gt=0"`
	Questions     []InterviewQuestion `json:"questions" validate:"omitempty,dive"`
	TimeDuration  int                 `json:"time_duration" validate:"omitempty,gt=0"`
}

// InterviewResponse represents an interview to API consumers.
type InterviewResponse struct {
	ID            uint                `json:"id"`
	Slug          string              `json:"slug"`
	Name          string              `json:"name"`
	Objective     string              `json:"objective"`
	InterviewerID uint                `json:"interviewer_id"`
	CreatedBy     uint                `json:"created_by,omitempty"`
	Interviewer   string              `json:"interviewer,omitempty"`
	AgentID       string              `json:"agent_id,omitempty"`
	Questions     []InterviewQuestion `json:"questions"`
	TimeDuration  int                 `json:"time_duration"`
	IsActive      bool                `json:"is_active"`
}

// NewInterviewResponse builds a response DTO from a model.
func NewInterviewResponse(interview models.Interview) InterviewResponse {
	var questions []InterviewQuestion
	if len(interview.Questions) > 0 {
		// stored questions were validated on write; a decode failure here
		// yields an empty list rather than a failed read
		_ = json.Unmarshal(interview.Questions, &questions)
	}

	return InterviewResponse{
		ID:            interview.ID,
		Slug:          interview.Slug,
		Name:          interview.Name,
		Objective:     interview.Objective,
		InterviewerID: interview.InterviewerID,
		CreatedBy:     interview.CreatedBy,
		Interviewer:   interview.Interviewer.Name,
		AgentID:       interview.Interviewer.AgentID,
		Questions:     questions,
		TimeDuration:  interview.TimeDuration,
		IsActive:      interview.IsActive,
	}
}
