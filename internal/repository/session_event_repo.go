package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// SessionEventFilter narrows event listing to a candidate and/or kind.
type SessionEventFilter struct {
	CandidateID string
	Kind        string
}

// SessionEventRepository exposes the append-only session event log.
type SessionEventRepository interface {
	Append(ctx context.Context, event *models.SessionEvent) error
	List(ctx context.Context, interviewID uint, filter SessionEventFilter) ([]models.SessionEvent, error)
	CountHints(ctx context.Context, interviewID uint, candidateID string) (int64, error)
}

// NewSessionEventRepository constructs a session event repository.
func NewSessionEventRepository(db *gorm.DB) SessionEventRepository {
	return &sessionEventRepository{db: db}
}

type sessionEventRepository struct {
	db *gorm.DB
}

func (r *sessionEventRepository) Append(ctx context.Context, event *models.SessionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *sessionEventRepository) List(ctx context.Context, interviewID uint, filter SessionEventFilter) ([]models.SessionEvent, error) {
	query := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID)

	if filter.CandidateID != "" {
		query = query.Where("candidate_id = ?", filter.CandidateID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	var events []models.SessionEvent
	// id breaks ties between events created in the same clock tick
	err := query.Order("created_at ASC").Order("id ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *sessionEventRepository) CountHints(ctx context.Context, interviewID uint, candidateID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SessionEvent{}).
		Where("interview_id = ? AND candidate_id = ? AND kind = ?", interviewID, candidateID, models.SessionEventKindHint).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
