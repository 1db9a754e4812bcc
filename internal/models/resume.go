package models

import "time"

// Resume records an uploaded candidate CV.
type Resume struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InterviewID uint      `gorm:"not null;index" json:"interview_id"`
	CandidateID string    `gorm:"size:128;not null" json:"candidate_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	URL         string    `gorm:"size:512;not null" json:"url"`
	MimeType    string    `gorm:"size:128" json:"mime_type"`
	SizeBytes   int64     `gorm:"default:0" json:"size_bytes"`
	Checksum    string    `gorm:"size:64" json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}
