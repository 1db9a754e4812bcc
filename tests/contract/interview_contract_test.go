package contract_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type openAPISpec struct {
	Paths      map[string]map[string]json.RawMessage `json:"paths"`
	Components struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
}

func TestSpecificationIncludesInterviewEndpoints(t *testing.T) {
	spec := loadSpec(t, "docs/api/interview.json")

	requiredPaths := []string{
		"/api/v1/health",
		"/api/v1/interviews",
		"/api/v1/interviews/{slug}",
		"/api/v1/interviews/{slug}/report",
		"/api/v1/interviews/{slug}/feed",
		"/api/v1/interviews/{slug}/resumes",
		"/api/v1/interviews/{slug}/resumes/{candidateId}",
		"/api/v1/calls/register",
		"/api/v1/calls/turns",
		"/api/v1/coding/execute",
		"/api/v1/coding/followup",
		"/api/v1/coding/hint",
		"/api/v1/coding/problem",
	}

	for _, path := range requiredPaths {
		if _, ok := spec.Paths[path]; !ok {
			t.Fatalf("expected interview spec to contain path %s", path)
		}
	}

	for _, schema := range []string{"Interview", "SessionEvent", "GradingReport", "ReportDimension", "ExecutionResult", "WebCall", "Resume"} {
		if _, ok := spec.Components.Schemas[schema]; !ok {
			t.Fatalf("expected interview spec to contain schema %s", schema)
		}
	}
}

func TestGradingReportSchemaPinsAllDimensions(t *testing.T) {
	spec := loadSpec(t, "docs/api/interview.json")

	raw, ok := spec.Components.Schemas["GradingReport"]
	if !ok {
		t.Fatalf("expected GradingReport schema")
	}

	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("failed to unmarshal GradingReport schema: %v", err)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, field := range schema.Required {
		required[field] = true
	}

	for _, dimension := range []string{"technical_skills", "code_quality", "complexity_analysis", "communication_skills", "overall_summary"} {
		if !required[dimension] {
			t.Fatalf("expected GradingReport schema to require %s", dimension)
		}
	}
}

func loadSpec(t *testing.T, relative string) openAPISpec {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to resolve caller")
	}
	base := filepath.Join(filepath.Dir(filename), "..", "..")
	fullPath := filepath.Join(base, relative)

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", fullPath, err)
	}
	var spec openAPISpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", fullPath, err)
	}
	return spec
}
