package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderPromptSubstitutesBindings(t *testing.T) {
	out := RenderPrompt("Status: {STATUS}\nOutput: {OUTPUT}", map[string]string{
		"STATUS": "Accepted",
		"OUTPUT": "42",
	})
	require.Equal(t, "Status: Accepted\nOutput: 42", out)
}

func TestRenderPromptLeavesUnboundPlaceholders(t *testing.T) {
	out := RenderPrompt("{CODE} / {STATUS}", map[string]string{"CODE": "x=1"})
	require.Equal(t, "x=1 / {STATUS}", out)
}

func TestRenderPromptNoBindings(t *testing.T) {
	require.Equal(t, "{CODE}", RenderPrompt("{CODE}", nil))
}

func TestProgressiveHintPromptsCoverAllLevels(t *testing.T) {
	for _, level := range []string{"nudge", "guide", "direction"} {
		instruction, ok := ProgressiveHintPrompts[level]
		require.True(t, ok, level)
		require.NotEmpty(t, instruction)
	}
}

func TestGradingPromptFixesSchema(t *testing.T) {
	for _, key := range []string{"technical_skills", "code_quality", "complexity_analysis", "communication_skills", "overall_summary"} {
		require.True(t, strings.Contains(GradingFeedbackPrompt, key), key)
	}
}
