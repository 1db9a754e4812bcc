package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/config"
	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/handler"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/internal/repository"
	"github.com/codeview-ai/codeview-api/internal/router"
	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/pkg/ai"
	"github.com/codeview-ai/codeview-api/pkg/sandbox"
	"github.com/codeview-ai/codeview-api/pkg/voice"
)

type scriptedModel struct {
	responses []string
	err       error
	calls     int
}

func (m *scriptedModel) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("no scripted response")
	}
	response := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return response, nil
}

type stubExecutor struct {
	result sandbox.RunResult
	err    error
}

func (s *stubExecutor) Run(ctx context.Context, req sandbox.RunRequest) (sandbox.RunResult, error) {
	return s.result, s.err
}

type stubVoiceAgent struct {
	call voice.WebCall
	err  error
}

func (s *stubVoiceAgent) RegisterWebCall(ctx context.Context, agentID string, dynamicVars map[string]string) (voice.WebCall, error) {
	if s.err != nil {
		return voice.WebCall{}, s.err
	}
	return s.call, nil
}

type apiFixture struct {
	app      *fiber.App
	db       *gorm.DB
	model    *scriptedModel
	executor *stubExecutor
	agent    *stubVoiceAgent
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Interviewer{},
		&models.Interview{},
		&models.SessionEvent{},
		&models.GradingReport{},
		&models.Resume{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	model := &scriptedModel{responses: []string{"stub response"}}
	executor := &stubExecutor{}
	agent := &stubVoiceAgent{call: voice.WebCall{CallID: "call-1", AccessToken: "tok", AgentID: "agent-77"}}

	interviewRepo := repository.NewInterviewRepository(db)
	interviewerRepo := repository.NewInterviewerRepository(db)
	eventRepo := repository.NewSessionEventRepository(db)
	reportRepo := repository.NewGradingReportRepository(db)

	interviewService := service.NewInterviewService(interviewRepo, interviewerRepo, nil, time.Minute, validate, logger)
	callService := service.NewCallService(interviewRepo, eventRepo, agent, nil, validate, logger)
	executionService := service.NewExecutionService(interviewRepo, eventRepo, executor, model, nil, validate, logger, service.ExecutionConfig{
		Timeout:       time.Second,
		WorkspaceRoot: t.TempDir(),
	})
	hintService := service.NewHintService(interviewRepo, eventRepo, model, nil, validate, logger)
	reportService := service.NewReportService(interviewRepo, eventRepo, reportRepo, model, "openai", logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret", CodingRateLimit: 1000}, router.Dependencies{
		InterviewHandler: handler.NewInterviewHandler(interviewService, logger),
		CallHandler:      handler.NewCallHandler(callService, logger),
		CodingHandler:    handler.NewCodingHandler(executionService, hintService, logger),
		ReportHandler:    handler.NewReportHandler(reportService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return &apiFixture{app: app, db: db, model: model, executor: executor, agent: agent}
}

func (f *apiFixture) seedInterview(t *testing.T) models.Interview {
	t.Helper()

	interviewer := models.Interviewer{Name: "Ada", AgentID: "agent-77"}
	require.NoError(t, f.db.Create(&interviewer).Error)

	interview := models.Interview{
		Slug:          "backend-screen-ab12",
		Name:          "Backend Screen",
		Objective:     "assess API design skills",
		InterviewerID: interviewer.ID,
		TimeDuration:  30,
		IsActive:      true,
	}
	require.NoError(t, f.db.Create(&interview).Error)
	return interview
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	if target != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, target))
	}
}

func TestInterviewLifecycle(t *testing.T) {
	fixture := setupAPI(t)

	interviewer := models.Interviewer{Name: "Ada", AgentID: "agent-77"}
	require.NoError(t, fixture.db.Create(&interviewer).Error)

	resp := postJSON(t, fixture.app, "/api/v1/interviews", dto.CreateInterviewRequest{
		Name:          "Backend Screen",
		Objective:     "assess API design skills",
		InterviewerID: interviewer.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created dto.InterviewResponse
	decodeData(t, resp, &created)
	require.NotEmpty(t, created.Slug)
	require.True(t, created.IsActive)
	require.Equal(t, uint(1), created.CreatedBy, "creator stamped from the authenticated token")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/"+created.Slug, nil)
	getResp, err := fixture.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)

	delReq := httptest.NewRequest(http.MethodDelete, "/api/v1/interviews/"+created.Slug, nil)
	delResp, err := fixture.app.Test(delReq, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, delResp.StatusCode)

	var deactivated dto.InterviewResponse
	decodeData(t, delResp, &deactivated)
	require.False(t, deactivated.IsActive)
}

func TestInterviewNotFound(t *testing.T) {
	fixture := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/nope", nil)
	resp, err := fixture.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHintEscalatesAcrossRequests(t *testing.T) {
	fixture := setupAPI(t)
	fixture.seedInterview(t)
	fixture.model.responses = []string{"try a smaller input", "consider a stack", "reverse pointers iteratively"}

	wantLevels := []string{"nudge", "guide", "direction"}
	for i, want := range wantLevels {
		resp := postJSON(t, fixture.app, "/api/v1/coding/hint", dto.HintRequest{
			InterviewSlug: "backend-screen-ab12",
			CandidateID:   "cand-1",
			Problem:       "reverse a linked list",
			Code:          "def reverse(head): pass",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "hint %d", i)
		resp.Body.Close()

		var events []models.SessionEvent
		require.NoError(t, fixture.db.Where("kind = ?", models.SessionEventKindHint).Order("id ASC").Find(&events).Error)
		require.Len(t, events, i+1)

		var payload models.HintPayload
		require.NoError(t, events[i].DecodePayload(&payload))
		require.Equal(t, want, payload.HintLevel)
	}
}

func TestHintEscalationIsPerCandidate(t *testing.T) {
	fixture := setupAPI(t)
	fixture.seedInterview(t)
	fixture.model.responses = []string{"hint for one", "hint for two"}

	for _, candidate := range []string{"cand-1", "cand-2"} {
		resp := postJSON(t, fixture.app, "/api/v1/coding/hint", dto.HintRequest{
			InterviewSlug: "backend-screen-ab12",
			CandidateID:   candidate,
			Problem:       "two sum",
			Code:          "pass",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	var events []models.SessionEvent
	require.NoError(t, fixture.db.Where("kind = ?", models.SessionEventKindHint).Order("id ASC").Find(&events).Error)
	require.Len(t, events, 2)

	for _, event := range events {
		var payload models.HintPayload
		require.NoError(t, event.DecodePayload(&payload))
		require.Equal(t, "nudge", payload.HintLevel, "each candidate starts at nudge")
	}
}

func TestCodingExecuteRecordsSubmission(t *testing.T) {
	fixture := setupAPI(t)
	fixture.seedInterview(t)
	fixture.executor.result = sandbox.RunResult{Stdout: "42\n", ExitCode: 0, Duration: 80 * time.Millisecond}

	resp := postJSON(t, fixture.app, "/api/v1/coding/execute", dto.ExecutionRequest{
		InterviewSlug: "backend-screen-ab12",
		CandidateID:   "cand-1",
		Language:      "python",
		Code:          "print(42)",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result dto.ExecutionResponse
	decodeData(t, resp, &result)
	require.Equal(t, "Accepted", result.Status)
	require.Equal(t, "42", result.Output)

	var count int64
	require.NoError(t, fixture.db.Model(&models.SessionEvent{}).
		Where("kind = ?", models.SessionEventKindCodeSubmission).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCodingProblemGeneration(t *testing.T) {
	fixture := setupAPI(t)
	fixture.model.responses = []string{"Given a sorted array, find the first missing positive integer. Input: [1, 2, 4] Output: 3"}

	resp := postJSON(t, fixture.app, "/api/v1/coding/problem", dto.ProblemRequest{
		Topic:      "arrays",
		Difficulty: "medium",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var problem dto.ProblemResponse
	decodeData(t, resp, &problem)
	require.Contains(t, problem.Problem, "first missing positive integer")
}

func TestCodingProblemRejectsUnknownDifficulty(t *testing.T) {
	fixture := setupAPI(t)

	resp := postJSON(t, fixture.app, "/api/v1/coding/problem", dto.ProblemRequest{
		Topic:      "arrays",
		Difficulty: "nightmare",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, 0, fixture.model.calls)
}

func TestCodingExecuteRejectsUnknownLanguage(t *testing.T) {
	fixture := setupAPI(t)
	fixture.seedInterview(t)

	resp := postJSON(t, fixture.app, "/api/v1/coding/execute", dto.ExecutionRequest{
		InterviewSlug: "backend-screen-ab12",
		CandidateID:   "cand-1",
		Language:      "cobol",
		Code:          "DISPLAY '42'",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCallRegisterAndTurns(t *testing.T) {
	fixture := setupAPI(t)
	fixture.seedInterview(t)

	resp := postJSON(t, fixture.app, "/api/v1/calls/register", dto.RegisterCallRequest{
		InterviewSlug: "backend-screen-ab12",
		CandidateID:   "cand-1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var call dto.RegisterCallResponse
	decodeData(t, resp, &call)
	require.Equal(t, "call-1", call.CallID)

	turnResp := postJSON(t, fixture.app, "/api/v1/calls/turns", dto.VoiceTurnRequest{
		InterviewSlug: "backend-screen-ab12",
		CandidateID:   "cand-1",
		Speaker:       "candidate",
		Text:          "I will start with a brute force solution",
	})
	require.Equal(t, fiber.StatusCreated, turnResp.StatusCode)
	turnResp.Body.Close()

	var count int64
	require.NoError(t, fixture.db.Model(&models.SessionEvent{}).
		Where("kind = ?", models.SessionEventKindVoiceTurn).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestReportGeneration(t *testing.T) {
	fixture := setupAPI(t)
	interview := fixture.seedInterview(t)

	require.NoError(t, fixture.db.Create(&models.SessionEvent{
		InterviewID: interview.ID,
		CandidateID: "cand-1",
		Kind:        models.SessionEventKindVoiceTurn,
		Payload:     datatypes.JSON(`{"text":"I will sort first"}`),
	}).Error)

	fixture.model.responses = []string{`{
	  "technical_skills": {"score": 80, "justification": "good"},
	  "code_quality": {"score": 70, "justification": "fine"},
	  "complexity_analysis": {"score": 60, "justification": "partial"},
	  "communication_skills": {"score": 85, "justification": "clear"},
	  "overall_summary": "solid performance"
	}`}

	resp := postJSON(t, fixture.app, "/api/v1/interviews/backend-screen-ab12/report", dto.GradingReportRequest{CandidateID: "cand-1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report dto.GradingReportResponse
	decodeData(t, resp, &report)
	require.Equal(t, float64(80), report.TechnicalSkills.Score)
	require.Equal(t, "solid performance", report.OverallSummary)

	var stored int64
	require.NoError(t, fixture.db.Model(&models.GradingReport{}).Count(&stored).Error)
	require.Equal(t, int64(1), stored)
}

func TestReportWithoutEventsIsNotFound(t *testing.T) {
	fixture := setupAPI(t)
	fixture.seedInterview(t)

	resp := postJSON(t, fixture.app, "/api/v1/interviews/backend-screen-ab12/report", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, 0, fixture.model.calls, "model is never consulted for an empty session")
}

func TestReportMalformedModelOutputIsBadGateway(t *testing.T) {
	fixture := setupAPI(t)
	interview := fixture.seedInterview(t)

	require.NoError(t, fixture.db.Create(&models.SessionEvent{
		InterviewID: interview.ID,
		CandidateID: "cand-1",
		Kind:        models.SessionEventKindVoiceTurn,
		Payload:     datatypes.JSON(`{"text":"hello"}`),
	}).Error)

	fixture.model.responses = []string{"I think the candidate did well overall!"}

	resp := postJSON(t, fixture.app, "/api/v1/interviews/backend-screen-ab12/report", dto.GradingReportRequest{CandidateID: "cand-1"})
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	require.Equal(t, 1, fixture.model.calls, "exactly one model call, no retry")
}

func TestHealthEndpoint(t *testing.T) {
	fixture := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := fixture.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
