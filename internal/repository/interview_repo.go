package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// InterviewRepository exposes persistence helpers for interviews.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	Update(ctx context.Context, interview *models.Interview) error
	GetBySlug(ctx context.Context, slug string) (models.Interview, error)
	GetByID(ctx context.Context, id uint) (models.Interview, error)
}

// NewInterviewRepository constructs an interview repository.
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

type interviewRepository struct {
	db *gorm.DB
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

func (r *interviewRepository) Update(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Save(interview).Error
}

func (r *interviewRepository) GetBySlug(ctx context.Context, slug string) (models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Preload("Interviewer").
		Where("slug = ?", slug).
		First(&interview).Error
	if err != nil {
		return models.Interview{}, err
	}
	return interview, nil
}

func (r *interviewRepository) GetByID(ctx context.Context, id uint) (models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Preload("Interviewer").
		First(&interview, id).Error
	if err != nil {
		return models.Interview{}, err
	}
	return interview, nil
}
