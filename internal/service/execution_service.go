package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

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
	"github.com/codeview-ai/codeview-api/internal/repository"
	"github.com/codeview-ai/codeview-api/pkg/ai"
	"github.com/codeview-ai/codeview-api/pkg/sandbox"
)

// ErrUnsupportedLanguage indicates the requested language is not allowed.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Submission statuses recorded with code_submission events.
const (
	ExecutionStatusAccepted     = "Accepted"
	ExecutionStatusRuntimeError = "Runtime Error"
	ExecutionStatusTimeout      = "Time Limit Exceeded"
	ExecutionStatusFailed       = "Execution Failed"
)

// ExecutionService runs candidate code and records the attempt.
type ExecutionService interface {
	Execute(ctx context.Context, payload dto.ExecutionRequest) (dto.ExecutionResponse, error)
	FollowUp(ctx context.Context, payload dto.FollowUpRequest) (dto.FollowUpResponse, error)
	GenerateProblem(ctx context.Context, payload dto.ProblemRequest) (dto.ProblemResponse, error)
}

// ExecutionConfig describes execution configuration knobs.
type ExecutionConfig struct {
	Timeout       time.Duration
	MemoryLimitMB int
	CPUShares     int
	WorkspaceRoot string
}

type languageConfig struct {
	Image    string
	FileName string
	Command  []string
}

type executionService struct {
	interviews repository.InterviewRepository
	events     repository.SessionEventRepository
	executor   sandbox.Executor
	model      ai.Client
	feed       EventBroadcaster
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
	config     ExecutionConfig
	languages  map[string]languageConfig
}

// NewExecutionService constructs the code execution service. feed may be nil.
func NewExecutionService(interviews repository.InterviewRepository, events repository.SessionEventRepository, executor sandbox.Executor, model ai.Client, feed EventBroadcaster, validate *validator.Validate, logger zerolog.Logger, cfg ExecutionConfig) ExecutionService {
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = os.TempDir()
	}

	return &executionService{
		interviews: interviews,
		events:     events,
		executor:   executor,
		model:      model,
		feed:       feed,
		validator:  validate,
		logger:     logger.With().Str("component", "execution_service").Logger(),
		tracer:     otel.Tracer("github.com/codeview-ai/codeview-api/internal/service/execution"),
		config:     cfg,
		languages: map[string]languageConfig{
			"python": {
				Image:    "python:3.11-alpine",
				FileName: "main.py",
				Command:  []string{"python", "main.py"},
			},
			"javascript": {
				Image:    "node:20-alpine",
				FileName: "main.js",
				Command:  []string{"node", "main.js"},
			},
			"go": {
				Image:    "golang:1.22-alpine",
				FileName: "main.go",
				Command:  []string{"sh", "-c", "go run main.go"},
			},
		},
	}
}

func (s *executionService) Execute(ctx context.Context, payload dto.ExecutionRequest) (dto.ExecutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExecutionResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "execution.run", trace.WithAttributes(
		attribute.String("interview.slug", payload.InterviewSlug),
		attribute.String("execution.language", payload.Language),
	))
	defer span.End()

	language := strings.ToLower(strings.TrimSpace(payload.Language))
	langCfg, ok := s.languages[language]
	if !ok {
		return dto.ExecutionResponse{}, ErrUnsupportedLanguage
	}

	interview, err := s.interviews.GetBySlug(ctx, payload.InterviewSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ExecutionResponse{}, ErrInterviewNotFound
		}
		span.RecordError(err)
		return dto.ExecutionResponse{}, fmt.Errorf("load interview: %w", err)
	}

	workspace, err := os.MkdirTemp(s.config.WorkspaceRoot, "run-")
	if err != nil {
		return dto.ExecutionResponse{}, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	if err := os.WriteFile(filepath.Join(workspace, langCfg.FileName), []byte(payload.Code), 0600); err != nil {
		return dto.ExecutionResponse{}, fmt.Errorf("write source: %w", err)
	}

	result, execErr := s.executor.Run(ctx, sandbox.RunRequest{
		Image:         langCfg.Image,
		Cmd:           langCfg.Command,
		Timeout:       s.config.Timeout,
		Workspace:     workspace,
		MemoryLimitMB: int64(s.config.MemoryLimitMB),
		CPUShares:     int64(s.config.CPUShares),
	})

	response := dto.ExecutionResponse{
		Output:          strings.TrimSpace(result.Stdout),
		Error:           combineErrors(result.Stderr, execErr),
		ExecutionTimeMs: result.Duration.Milliseconds(),
		MemoryKB:        result.MemoryUsageBytes / 1024,
	}

	switch {
	case result.TimedOut:
		response.Status = ExecutionStatusTimeout
	case execErr != nil:
		response.Status = ExecutionStatusFailed
		span.RecordError(execErr)
		span.SetStatus(codes.Error, "run failed")
	case result.ExitCode != 0:
		response.Status = ExecutionStatusRuntimeError
		if response.Error == "" {
			response.Error = fmt.Sprintf("process exited with code %d", result.ExitCode)
		}
	default:
		response.Status = ExecutionStatusAccepted
	}

	eventPayload, err := json.Marshal(models.CodeSubmissionPayload{
		Code:            payload.Code,
		Language:        language,
		Status:          response.Status,
		Output:          response.Output,
		Error:           response.Error,
		ExecutionTimeMs: response.ExecutionTimeMs,
		MemoryKB:        response.MemoryKB,
	})
	if err != nil {
		return dto.ExecutionResponse{}, fmt.Errorf("marshal submission payload: %w", err)
	}

	event := models.SessionEvent{
		InterviewID: interview.ID,
		CandidateID: payload.CandidateID,
		Kind:        models.SessionEventKindCodeSubmission,
		Payload:     datatypes.JSON(eventPayload),
	}
	if err := s.events.Append(ctx, &event); err != nil {
		// the run already happened; the candidate still gets the result, the
		// missing transcript entry is logged for reconciliation
		s.logger.Error().Err(err).
			Uint("interview_id", interview.ID).
			Str("candidate_id", payload.CandidateID).
			Msg("code submission event not persisted")
	} else if s.feed != nil {
		s.feed.Broadcast(ctx, event)
	}

	return response, nil
}

func (s *executionService) FollowUp(ctx context.Context, payload dto.FollowUpRequest) (dto.FollowUpResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FollowUpResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "execution.follow_up")
	defer span.End()

	prompt := ai.RenderPrompt(ai.ExecutionFollowUpPrompt, map[string]string{
		"CODE":   payload.Code,
		"STATUS": payload.Status,
		"OUTPUT": payload.Output,
		"ERROR":  payload.Error,
	})

	line, err := s.model.Complete(ctx, ai.CompletionRequest{
		System:      ai.CodingInterviewerPrompt,
		User:        prompt,
		Temperature: 0.7,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return dto.FollowUpResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return dto.FollowUpResponse{FollowUp: line}, nil
}

func (s *executionService) GenerateProblem(ctx context.Context, payload dto.ProblemRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "execution.generate_problem", trace.WithAttributes(
		attribute.String("topic", payload.Topic),
		attribute.String("difficulty", payload.Difficulty),
	))
	defer span.End()

	prompt := ai.RenderPrompt(ai.ProblemGenerationPrompt, map[string]string{
		"TOPIC":      payload.Topic,
		"DIFFICULTY": payload.Difficulty,
	})

	problem, err := s.model.Complete(ctx, ai.CompletionRequest{
		System:      ai.CodingInterviewerPrompt,
		User:        prompt,
		Temperature: 0.7,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return dto.ProblemResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return dto.ProblemResponse{Problem: problem}, nil
}

func combineErrors(stderr string, execErr error) string {
	if execErr == nil {
		return strings.TrimSpace(stderr)
	}
	if stderr == "" {
		return execErr.Error()
	}
	return strings.TrimSpace(fmt.Sprintf("%s\n%s", stderr, execErr.Error()))
}
