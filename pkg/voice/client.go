package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://api.retellai.com"

// Config contains credentials for the managed voice-agent API.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// WebCall is the registration result for a browser voice session.
type WebCall struct {
	CallID      string `json:"call_id"`
	AccessToken string `json:"access_token"`
	AgentID     string `json:"agent_id"`
}

// Client talks to the managed conversational voice-agent service.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// New constructs a voice-agent API client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("voice agent api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		tracer:     otel.Tracer("github.com/codeview-ai/codeview-api/pkg/voice"),
		logger:     logger.With().Str("component", "voice_client").Logger(),
	}, nil
}

// RegisterWebCall registers a browser call with the given agent and dynamic
// variables the agent can reference during the session.
func (c *Client) RegisterWebCall(parent context.Context, agentID string, dynamicVars map[string]string) (WebCall, error) {
	if agentID == "" {
		return WebCall{}, fmt.Errorf("agent id is required")
	}

	ctx, span := c.tracer.Start(parent, "voice.register_web_call", trace.WithAttributes(
		attribute.String("voice.agent_id", agentID),
	))
	defer span.End()

	payload := map[string]interface{}{
		"agent_id": agentID,
	}
	if len(dynamicVars) > 0 {
		payload["retell_llm_dynamic_variables"] = dynamicVars
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return WebCall{}, fmt.Errorf("marshal register payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/create-web-call", bytes.NewReader(body))
	if err != nil {
		return WebCall{}, fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return WebCall{}, fmt.Errorf("register web call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return WebCall{}, fmt.Errorf("read register response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("voice agent returned status %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error().Int("status", resp.StatusCode).Bytes("body", raw).Msg("web call registration failed")
		return WebCall{}, err
	}

	var call WebCall
	if err := json.Unmarshal(raw, &call); err != nil {
		return WebCall{}, fmt.Errorf("decode register response: %w", err)
	}

	return call, nil
}
