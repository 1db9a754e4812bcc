package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/internal/repository"
)

// ErrInterviewerNotFound indicates the referenced interviewer does not exist.
var ErrInterviewerNotFound = errors.New("interviewer not found")

// InterviewService manages interview lifecycle operations.
type InterviewService interface {
	Create(ctx context.Context, creatorID uint, payload dto.CreateInterviewRequest) (dto.InterviewResponse, error)
	GetBySlug(ctx context.Context, slug string) (dto.InterviewResponse, error)
	Deactivate(ctx context.Context, slug string) (dto.InterviewResponse, error)
}

type interviewService struct {
	interviews   repository.InterviewRepository
	interviewers repository.InterviewerRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewInterviewService constructs the interview service. cache may be nil.
func NewInterviewService(interviews repository.InterviewRepository, interviewers repository.InterviewerRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) InterviewService {
	return &interviewService{
		interviews:   interviews,
		interviewers: interviewers,
		cache:        cache,
		cacheTTL:     ttl,
		validator:    validate,
		logger:       logger.With().Str("component", "interview_service").Logger(),
	}
}

func (s *interviewService) Create(ctx context.Context, creatorID uint, payload dto.CreateInterviewRequest) (dto.InterviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InterviewResponse{}, err
	}

	interviewer, err := s.interviewers.GetByID(ctx, payload.InterviewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InterviewResponse{}, ErrInterviewerNotFound
		}
		return dto.InterviewResponse{}, err
	}

	questions, err := json.Marshal(payload.Questions)
	if err != nil {
		return dto.InterviewResponse{}, fmt.Errorf("marshal questions: %w", err)
	}

	duration := payload.TimeDuration
	if duration <= 0 {
		duration = 30
	}

	interview := models.Interview{
		Slug:          buildSlug(payload.Name),
		Name:          payload.Name,
		Objective:     payload.Objective,
		InterviewerID: interviewer.ID,
		CreatedBy:     creatorID,
		Questions:     datatypes.JSON(questions),
		TimeDuration:  duration,
		IsActive:      true,
	}

	if err := s.interviews.Create(ctx, &interview); err != nil {
		return dto.InterviewResponse{}, err
	}

	interview.Interviewer = interviewer
	return dto.NewInterviewResponse(interview), nil
}

func (s *interviewService) GetBySlug(ctx context.Context, slug string) (dto.InterviewResponse, error) {
	cacheKey := fmt.Sprintf("interview:slug:%s", slug)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.InterviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("slug", slug).Msg("interview cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read interview cache")
		}
	}

	interview, err := s.interviews.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InterviewResponse{}, ErrInterviewNotFound
		}
		return dto.InterviewResponse{}, err
	}

	response := dto.NewInterviewResponse(interview)

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write interview cache")
			}
		}
	}

	return response, nil
}

func (s *interviewService) Deactivate(ctx context.Context, slug string) (dto.InterviewResponse, error) {
	interview, err := s.interviews.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InterviewResponse{}, ErrInterviewNotFound
		}
		return dto.InterviewResponse{}, err
	}

	interview.IsActive = false
	if err := s.interviews.Update(ctx, &interview); err != nil {
		return dto.InterviewResponse{}, err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, fmt.Sprintf("interview:slug:%s", slug)).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate interview cache")
		}
	}

	return dto.NewInterviewResponse(interview), nil
}

// buildSlug derives a unique readable slug from the interview name.
func buildSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")

	suffix := strings.Split(uuid.NewString(), "-")[0]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
