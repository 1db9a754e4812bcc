package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// ResumeRepository persists uploaded candidate resumes.
type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	GetByCandidate(ctx context.Context, interviewID uint, candidateID string) (models.Resume, error)
}

// NewResumeRepository constructs a resume repository.
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

type resumeRepository struct {
	db *gorm.DB
}

func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) GetByCandidate(ctx context.Context, interviewID uint, candidateID string) (models.Resume, error) {
	var resume models.Resume
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND candidate_id = ?", interviewID, candidateID).
		Order("created_at DESC").
		First(&resume).Error
	if err != nil {
		return models.Resume{}, err
	}
	return resume, nil
}
