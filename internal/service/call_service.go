package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/internal/repository"
	"github.com/codeview-ai/codeview-api/pkg/voice"
)

// ErrInterviewInactive indicates a call was requested for a closed interview.
var ErrInterviewInactive = errors.New("interview is not active")

// ErrAgentMissing indicates the interviewer has no voice agent configured.
var ErrAgentMissing = errors.New("interviewer has no voice agent")

// VoiceAgent registers browser voice sessions with the managed agent service.
type VoiceAgent interface {
	RegisterWebCall(ctx context.Context, agentID string, dynamicVars map[string]string) (voice.WebCall, error)
}

// CallService manages voice call registration and transcript ingestion.
type CallService interface {
	Register(ctx context.Context, payload dto.RegisterCallRequest) (dto.RegisterCallResponse, error)
	RecordTurn(ctx context.Context, payload dto.VoiceTurnRequest) error
}

type callService struct {
	interviews repository.InterviewRepository
	events     repository.SessionEventRepository
	agent      VoiceAgent
	feed       EventBroadcaster
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewCallService constructs the call service. feed may be nil.
func NewCallService(interviews repository.InterviewRepository, events repository.SessionEventRepository, agent VoiceAgent, feed EventBroadcaster, validate *validator.Validate, logger zerolog.Logger) CallService {
	return &callService{
		interviews: interviews,
		events:     events,
		agent:      agent,
		feed:       feed,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "call_service").Logger(),
		tracer:     otel.Tracer("github.com/codeview-ai/codeview-api/internal/service/call"),
	}
}

func (s *callService) Register(ctx context.Context, payload dto.RegisterCallRequest) (dto.RegisterCallResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RegisterCallResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "call.register", trace.WithAttributes(
		attribute.String("interview.slug", payload.InterviewSlug),
	))
	defer span.End()

	interview, err := s.interviews.GetBySlug(ctx, payload.InterviewSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegisterCallResponse{}, ErrInterviewNotFound
		}
		span.RecordError(err)
		return dto.RegisterCallResponse{}, fmt.Errorf("load interview: %w", err)
	}

	if !interview.IsActive {
		return dto.RegisterCallResponse{}, ErrInterviewInactive
	}
	if !interview.Interviewer.HasAgent() {
		return dto.RegisterCallResponse{}, ErrAgentMissing
	}

	dynamicVars := map[string]string{
		"interview_name": interview.Name,
		"objective":      interview.Objective,
		"candidate_id":   payload.CandidateID,
	}
	for key, value := range payload.DynamicData {
		dynamicVars[key] = value
	}

	call, err := s.agent.RegisterWebCall(ctx, interview.Interviewer.AgentID, dynamicVars)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		return dto.RegisterCallResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return dto.RegisterCallResponse{
		CallID:      call.CallID,
		AccessToken: call.AccessToken,
		AgentID:     call.AgentID,
	}, nil
}

func (s *callService) RecordTurn(ctx context.Context, payload dto.VoiceTurnRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "call.record_turn", trace.WithAttributes(
		attribute.String("interview.slug", payload.InterviewSlug),
	))
	defer span.End()

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return errors.New("voice turn empty after sanitization")
	}

	interview, err := s.interviews.GetBySlug(ctx, payload.InterviewSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInterviewNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("load interview: %w", err)
	}

	turnPayload, err := json.Marshal(models.VoiceTurnPayload{Text: text, Speaker: payload.Speaker})
	if err != nil {
		return fmt.Errorf("marshal voice turn payload: %w", err)
	}

	event := models.SessionEvent{
		InterviewID: interview.ID,
		CandidateID: payload.CandidateID,
		Kind:        models.SessionEventKindVoiceTurn,
		Payload:     datatypes.JSON(turnPayload),
	}
	if err := s.events.Append(ctx, &event); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if s.feed != nil {
		s.feed.Broadcast(ctx, event)
	}

	return nil
}
