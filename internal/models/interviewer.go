package models

import "time"

// Interviewer describes a configured voice-agent persona.
type Interviewer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	AgentID     string    `gorm:"size:128;not null" json:"agent_id"`
	Description string    `gorm:"type:text" json:"description"`
	Rapport     int       `gorm:"default:5" json:"rapport"`
	Exploration int       `gorm:"default:5" json:"exploration"`
	Empathy     int       `gorm:"default:5" json:"empathy"`
	Speed       int       `gorm:"default:5" json:"speed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasAgent reports whether the interviewer is bound to a voice agent.
func (i Interviewer) HasAgent() bool {
	return i.AgentID != ""
}
