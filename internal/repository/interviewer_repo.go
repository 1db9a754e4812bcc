package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// InterviewerRepository exposes persistence helpers for interviewer personas.
type InterviewerRepository interface {
	GetByID(ctx context.Context, id uint) (models.Interviewer, error)
	List(ctx context.Context) ([]models.Interviewer, error)
}

// NewInterviewerRepository constructs an interviewer repository.
func NewInterviewerRepository(db *gorm.DB) InterviewerRepository {
	return &interviewerRepository{db: db}
}

type interviewerRepository struct {
	db *gorm.DB
}

func (r *interviewerRepository) GetByID(ctx context.Context, id uint) (models.Interviewer, error) {
	var interviewer models.Interviewer
	if err := r.db.WithContext(ctx).First(&interviewer, id).Error; err != nil {
		return models.Interviewer{}, err
	}
	return interviewer, nil
}

func (r *interviewerRepository) List(ctx context.Context) ([]models.Interviewer, error) {
	var interviewers []models.Interviewer
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&interviewers).Error; err != nil {
		return nil, err
	}
	return interviewers, nil
}
