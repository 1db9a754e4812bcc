package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/internal/observability"
	"github.com/codeview-ai/codeview-api/internal/repository"
	"github.com/codeview-ai/codeview-api/pkg/ai"
)

// ErrStoreUnavailable indicates the hint was generated but could not be
// persisted. Reported distinctly from generation failures so operators can
// reconcile hints the candidate received without a durable record.
var ErrStoreUnavailable = errors.New("event store unavailable")

// EventBroadcaster fans a stored session event out to live subscribers.
type EventBroadcaster interface {
	Broadcast(ctx context.Context, event models.SessionEvent)
}

// HintService issues progressive hints for a coding problem.
type HintService interface {
	RequestHint(ctx context.Context, payload dto.HintRequest) (dto.HintResponse, error)
}

type hintService struct {
	interviews repository.InterviewRepository
	events     repository.SessionEventRepository
	model      ai.Client
	feed       EventBroadcaster
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewHintService constructs the hint service. feed may be nil.
func NewHintService(interviews repository.InterviewRepository, events repository.SessionEventRepository, model ai.Client, feed EventBroadcaster, validate *validator.Validate, logger zerolog.Logger) HintService {
	return &hintService{
		interviews: interviews,
		events:     events,
		model:      model,
		feed:       feed,
		validator:  validate,
		logger:     logger.With().Str("component", "hint_service").Logger(),
		tracer:     otel.Tracer("github.com/codeview-ai/codeview-api/internal/service/hint"),
	}
}

func (s *hintService) RequestHint(ctx context.Context, payload dto.HintRequest) (dto.HintResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HintResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "hint.request", trace.WithAttributes(
		attribute.String("interview.slug", payload.InterviewSlug),
	))
	defer span.End()

	interview, err := s.interviews.GetBySlug(ctx, payload.InterviewSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HintResponse{}, ErrInterviewNotFound
		}
		span.RecordError(err)
		return dto.HintResponse{}, fmt.Errorf("load interview: %w", err)
	}

	// The level is always recomputed from the persisted count, so the
	// escalation survives restarts. Two concurrent requests for the same
	// candidate can read the same count and both receive the same level;
	// the count-then-append policy tolerates that.
	count, err := s.events.CountHints(ctx, interview.ID, payload.CandidateID)
	if err != nil {
		span.RecordError(err)
		return dto.HintResponse{}, fmt.Errorf("count prior hints: %w", err)
	}

	level := NextHintLevel(int(count))
	span.SetAttributes(attribute.String("hint.level", string(level)))

	user := fmt.Sprintf("The programming problem is: %q. The candidate's current code is: \n\n```\n%s\n```\n\nThey are stuck. %s",
		payload.Problem, payload.Code, ai.ProgressiveHintPrompts[string(level)])

	hint, err := s.model.Complete(ctx, ai.CompletionRequest{
		System:      ai.HintSystemPrompt,
		User:        user,
		Temperature: 0.5,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return dto.HintResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	hintPayload, err := json.Marshal(models.HintPayload{Hint: hint, HintLevel: string(level)})
	if err != nil {
		return dto.HintResponse{}, fmt.Errorf("marshal hint payload: %w", err)
	}

	event := models.SessionEvent{
		InterviewID: interview.ID,
		CandidateID: payload.CandidateID,
		Kind:        models.SessionEventKindHint,
		Payload:     datatypes.JSON(hintPayload),
	}
	if err := s.events.Append(ctx, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.logger.Error().Err(err).
			Uint("interview_id", interview.ID).
			Str("candidate_id", payload.CandidateID).
			Str("hint_level", string(level)).
			Msg("hint generated but not persisted")
		return dto.HintResponse{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.feed != nil {
		s.feed.Broadcast(ctx, event)
	}

	observability.HintsIssued().WithLabelValues(string(level)).Inc()

	return dto.HintResponse{Hint: hint}, nil
}
