package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradingReport stores a generated end-of-session grading result. The report
// itself is derived from the session events and can always be regenerated;
// rows here exist for audit and dashboard access.
type GradingReport struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	InterviewID uint           `gorm:"not null;index" json:"interview_id"`
	CandidateID string         `gorm:"size:128" json:"candidate_id"`
	Provider    string         `gorm:"size:32" json:"provider"`
	Body        datatypes.JSON `gorm:"type:jsonb;not null" json:"body"`
	CreatedAt   time.Time      `json:"created_at"`
}
