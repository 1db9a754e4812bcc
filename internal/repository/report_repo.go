package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// GradingReportRepository persists generated grading reports.
type GradingReportRepository interface {
	Create(ctx context.Context, report *models.GradingReport) error
	ListByInterview(ctx context.Context, interviewID uint) ([]models.GradingReport, error)
}

// NewGradingReportRepository constructs a grading report repository.
func NewGradingReportRepository(db *gorm.DB) GradingReportRepository {
	return &gradingReportRepository{db: db}
}

type gradingReportRepository struct {
	db *gorm.DB
}

func (r *gradingReportRepository) Create(ctx context.Context, report *models.GradingReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *gradingReportRepository) ListByInterview(ctx context.Context, interviewID uint) ([]models.GradingReport, error) {
	var reports []models.GradingReport
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
