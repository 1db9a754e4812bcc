package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
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

// ErrMalformedReport indicates the model response failed schema validation.
// The raw payload is logged for postmortem; no partial report is produced.
var ErrMalformedReport = errors.New("model returned a malformed report")

// ErrUpstream indicates the language model collaborator failed. The service
// performs no retry of its own; callers own backoff and budget.
var ErrUpstream = errors.New("language model request failed")

// ErrInterviewNotFound indicates the interview cannot be located.
var ErrInterviewNotFound = errors.New("interview not found")

// reportSchema is the contract of record for model output. Extra top-level
// keys are tolerated; missing dimensions and out-of-range scores are not.
const reportSchema = `{
  "type": "object",
  "required": ["technical_skills", "code_quality", "complexity_analysis", "communication_skills", "overall_summary"],
  "properties": {
    "technical_skills": {"$ref": "#/$defs/dimension"},
    "code_quality": {"$ref": "#/$defs/dimension"},
    "complexity_analysis": {"$ref": "#/$defs/dimension"},
    "communication_skills": {"$ref": "#/$defs/dimension"},
    "overall_summary": {"type": "string"}
  },
  "$defs": {
    "dimension": {
      "type": "object",
      "required": ["score", "justification"],
      "properties": {
        "score": {"type": "number", "minimum": 0, "maximum": 100},
        "justification": {"type": "string"}
      }
    }
  }
}`

// ReportService synthesises the end-of-session grading report.
type ReportService interface {
	Generate(ctx context.Context, slug string, payload dto.GradingReportRequest) (dto.GradingReportResponse, error)
}

type reportService struct {
	interviews repository.InterviewRepository
	events     repository.SessionEventRepository
	reports    repository.GradingReportRepository
	model      ai.Client
	provider   string
	schema     *jsonschema.Schema
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewReportService constructs the report synthesis service.
func NewReportService(interviews repository.InterviewRepository, events repository.SessionEventRepository, reports repository.GradingReportRepository, model ai.Client, provider string, logger zerolog.Logger) ReportService {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("report.schema.json", strings.NewReader(reportSchema)); err != nil {
		panic(fmt.Sprintf("report schema resource: %v", err))
	}

	return &reportService{
		interviews: interviews,
		events:     events,
		reports:    reports,
		model:      model,
		provider:   provider,
		schema:     compiler.MustCompile("report.schema.json"),
		logger:     logger.With().Str("component", "report_service").Logger(),
		tracer:     otel.Tracer("github.com/codeview-ai/codeview-api/internal/service/report"),
	}
}

func (s *reportService) Generate(ctx context.Context, slug string, payload dto.GradingReportRequest) (dto.GradingReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "report.generate", trace.WithAttributes(
		attribute.String("interview.slug", slug),
	))
	defer span.End()

	interview, err := s.interviews.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradingReportResponse{}, ErrInterviewNotFound
		}
		span.RecordError(err)
		return dto.GradingReportResponse{}, fmt.Errorf("load interview: %w", err)
	}

	events, err := s.events.List(ctx, interview.ID, repository.SessionEventFilter{CandidateID: payload.CandidateID})
	if err != nil {
		span.RecordError(err)
		return dto.GradingReportResponse{}, fmt.Errorf("list session events: %w", err)
	}

	transcript, err := AssembleTranscript(events)
	if err != nil {
		if errors.Is(err, ErrNoTranscriptData) {
			observability.Reports().WithLabelValues("no_transcript").Inc()
		}
		return dto.GradingReportResponse{}, err
	}

	span.SetAttributes(attribute.Int("report.event_count", len(events)))

	system := ai.GradingFeedbackPrompt + "\nYou must respond with only a valid JSON object. Do not include markdown or any other text."
	user := fmt.Sprintf(`Here is the full transcript of a coding interview session. Analyze it in its entirety. Provide a detailed, structured analysis of the candidate's performance across multiple dimensions.

%s

Now, provide your final grading and feedback as a JSON object.`, transcript)

	// one model call per request; retries are the caller's decision
	raw, err := s.model.Complete(ctx, ai.CompletionRequest{
		System:   system,
		User:     user,
		JSONMode: true,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		observability.Reports().WithLabelValues("upstream_failure").Inc()
		return dto.GradingReportResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	report, err := s.parseReport(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed report")
		s.logger.Error().
			Uint("interview_id", interview.ID).
			Str("raw_response", raw).
			Msg("model returned malformed report")
		observability.Reports().WithLabelValues("malformed").Inc()
		return dto.GradingReportResponse{}, err
	}

	record := models.GradingReport{
		InterviewID: interview.ID,
		CandidateID: payload.CandidateID,
		Provider:    s.provider,
		Body:        datatypes.JSON(raw),
	}
	if err := s.reports.Create(ctx, &record); err != nil {
		// the report is derived data and can be regenerated; a failed audit
		// write must not cost the caller the result
		s.logger.Warn().Err(err).Uint("interview_id", interview.ID).Msg("failed to persist grading report")
	}

	observability.Reports().WithLabelValues("generated").Inc()
	return report, nil
}

func (s *reportService) parseReport(raw string) (dto.GradingReportResponse, error) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return dto.GradingReportResponse{}, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	if err := s.schema.Validate(decoded); err != nil {
		return dto.GradingReportResponse{}, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	var report dto.GradingReportResponse
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return dto.GradingReportResponse{}, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	return report, nil
}
