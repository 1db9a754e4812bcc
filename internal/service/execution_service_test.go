package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/models"
	"github.com/codeview-ai/codeview-api/pkg/sandbox"
)

type fakeExecutor struct {
	result  sandbox.RunResult
	err     error
	lastReq sandbox.RunRequest
	calls   int
}

func (f *fakeExecutor) Run(ctx context.Context, req sandbox.RunRequest) (sandbox.RunResult, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

func execRequest(language string) dto.ExecutionRequest {
	return dto.ExecutionRequest{
		InterviewSlug: "backend-screen-ab12",
		CandidateID:   "cand-1",
		Language:      language,
		Code:          "print('hello')",
	}
}

func newExecutionFixture(t *testing.T, executor *fakeExecutor, model *fakeModel, events *fakeEventRepo, feed EventBroadcaster) ExecutionService {
	t.Helper()
	interviews := &fakeInterviewRepo{interview: models.Interview{ID: 7, Slug: "backend-screen-ab12"}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewExecutionService(interviews, events, executor, model, feed, validate, testLogger(), ExecutionConfig{
		Timeout:       5 * time.Second,
		MemoryLimitMB: 128,
		WorkspaceRoot: t.TempDir(),
	})
}

func TestExecutionServiceAccepted(t *testing.T) {
	executor := &fakeExecutor{result: sandbox.RunResult{
		Stdout:           "hello\n",
		ExitCode:         0,
		Duration:         120 * time.Millisecond,
		MemoryUsageBytes: 2048 * 1024,
	}}
	events := &fakeEventRepo{}
	feed := &fakeBroadcaster{}
	svc := newExecutionFixture(t, executor, &fakeModel{}, events, feed)

	resp, err := svc.Execute(context.Background(), execRequest("python"))
	require.NoError(t, err)
	require.Equal(t, ExecutionStatusAccepted, resp.Status)
	require.Equal(t, "hello", resp.Output)
	require.Empty(t, resp.Error)
	require.Equal(t, int64(120), resp.ExecutionTimeMs)
	require.Equal(t, int64(2048), resp.MemoryKB)

	require.Equal(t, "python:3.11-alpine", executor.lastReq.Image)
	require.Equal(t, []string{"python", "main.py"}, executor.lastReq.Cmd)

	require.Len(t, events.appended, 1)
	require.Equal(t, models.SessionEventKindCodeSubmission, events.appended[0].Kind)

	var payload models.CodeSubmissionPayload
	require.NoError(t, events.appended[0].DecodePayload(&payload))
	require.Equal(t, ExecutionStatusAccepted, payload.Status)
	require.Equal(t, "print('hello')", payload.Code)

	require.Len(t, feed.events, 1)
}

func TestExecutionServiceRuntimeError(t *testing.T) {
	executor := &fakeExecutor{result: sandbox.RunResult{
		Stderr:   "NameError: name 'x' is not defined",
		ExitCode: 1,
	}}
	events := &fakeEventRepo{}
	svc := newExecutionFixture(t, executor, &fakeModel{}, events, nil)

	resp, err := svc.Execute(context.Background(), execRequest("python"))
	require.NoError(t, err)
	require.Equal(t, ExecutionStatusRuntimeError, resp.Status)
	require.Contains(t, resp.Error, "NameError")
}

func TestExecutionServiceTimeout(t *testing.T) {
	executor := &fakeExecutor{result: sandbox.RunResult{TimedOut: true, ExitCode: -1}}
	svc := newExecutionFixture(t, executor, &fakeModel{}, &fakeEventRepo{}, nil)

	resp, err := svc.Execute(context.Background(), execRequest("python"))
	require.NoError(t, err)
	require.Equal(t, ExecutionStatusTimeout, resp.Status)
}

func TestExecutionServiceRunFailure(t *testing.T) {
	executor := &fakeExecutor{err: errors.New("docker daemon unreachable")}
	svc := newExecutionFixture(t, executor, &fakeModel{}, &fakeEventRepo{}, nil)

	resp, err := svc.Execute(context.Background(), execRequest("python"))
	require.NoError(t, err)
	require.Equal(t, ExecutionStatusFailed, resp.Status)
	require.Contains(t, resp.Error, "docker daemon unreachable")
}

func TestExecutionServiceUnsupportedLanguage(t *testing.T) {
	executor := &fakeExecutor{}
	svc := newExecutionFixture(t, executor, &fakeModel{}, &fakeEventRepo{}, nil)

	_, err := svc.Execute(context.Background(), execRequest("brainfuck"))
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
	require.Equal(t, 0, executor.calls)
}

func TestExecutionServicePersistFailureStillReturnsResult(t *testing.T) {
	executor := &fakeExecutor{result: sandbox.RunResult{Stdout: "ok", ExitCode: 0}}
	events := &fakeEventRepo{appendErr: errors.New("store down")}
	feed := &fakeBroadcaster{}
	svc := newExecutionFixture(t, executor, &fakeModel{}, events, feed)

	resp, err := svc.Execute(context.Background(), execRequest("python"))
	require.NoError(t, err)
	require.Equal(t, ExecutionStatusAccepted, resp.Status)
	require.Empty(t, feed.events, "unpersisted events are not broadcast")
}

func TestExecutionServiceFollowUp(t *testing.T) {
	model := &fakeModel{response: "Nice. What is the time complexity of that approach?"}
	svc := newExecutionFixture(t, &fakeExecutor{}, model, &fakeEventRepo{}, nil)

	resp, err := svc.FollowUp(context.Background(), dto.FollowUpRequest{
		Code:   "sorted(xs)",
		Status: ExecutionStatusAccepted,
		Output: "[1, 2]",
	})
	require.NoError(t, err)
	require.Equal(t, "Nice. What is the time complexity of that approach?", resp.FollowUp)
	require.Equal(t, 1, model.calls)
	require.Contains(t, model.lastReq.User, "sorted(xs)")
	require.Contains(t, model.lastReq.User, ExecutionStatusAccepted)
	require.NotContains(t, model.lastReq.User, "{CODE}")
	require.Equal(t, float32(0.7), model.lastReq.Temperature)
}

func TestExecutionServiceFollowUpUpstreamFailure(t *testing.T) {
	model := &fakeModel{err: errors.New("timeout")}
	svc := newExecutionFixture(t, &fakeExecutor{}, model, &fakeEventRepo{}, nil)

	_, err := svc.FollowUp(context.Background(), dto.FollowUpRequest{Code: "x", Status: "Accepted"})
	require.ErrorIs(t, err, ErrUpstream)
}

func TestExecutionServiceGenerateProblem(t *testing.T) {
	model := &fakeModel{response: "Given a string, return the longest palindromic substring. Input: \"babad\" Output: \"bab\""}
	svc := newExecutionFixture(t, &fakeExecutor{}, model, &fakeEventRepo{}, nil)

	resp, err := svc.GenerateProblem(context.Background(), dto.ProblemRequest{Topic: "strings", Difficulty: "medium"})
	require.NoError(t, err)
	require.Equal(t, model.response, resp.Problem)
	require.Equal(t, 1, model.calls)
	require.Contains(t, model.lastReq.User, `"strings"`)
	require.Contains(t, model.lastReq.User, `"medium"`)
	require.NotContains(t, model.lastReq.User, "{TOPIC}")
	require.Equal(t, float32(0.7), model.lastReq.Temperature)
}

func TestExecutionServiceGenerateProblemValidation(t *testing.T) {
	model := &fakeModel{response: "unused"}
	svc := newExecutionFixture(t, &fakeExecutor{}, model, &fakeEventRepo{}, nil)

	_, err := svc.GenerateProblem(context.Background(), dto.ProblemRequest{Topic: "graphs", Difficulty: "impossible"})
	require.Error(t, err)
	require.Equal(t, 0, model.calls)
}

func TestExecutionServiceGenerateProblemUpstreamFailure(t *testing.T) {
	model := &fakeModel{err: errors.New("timeout")}
	svc := newExecutionFixture(t, &fakeExecutor{}, model, &fakeEventRepo{}, nil)

	_, err := svc.GenerateProblem(context.Background(), dto.ProblemRequest{Topic: "arrays", Difficulty: "easy"})
	require.ErrorIs(t, err, ErrUpstream)
}
