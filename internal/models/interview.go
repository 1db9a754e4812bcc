package models

import (
	"time"

	"gorm.io/datatypes"
)

// Interview represents one scheduled interview instance.
type Interview struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Slug          string         `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Objective     string         `gorm:"type:text" json:"objective"`
	InterviewerID uint           `gorm:"not null" json:"interviewer_id"`
	CreatedBy     uint           `gorm:"index" json:"created_by"`
	Questions     datatypes.JSON `gorm:"type:jsonb" json:"questions"`
	TimeDuration  int            `gorm:"default:30" json:"time_duration"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Interviewer   Interviewer    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"interviewer"`
}
