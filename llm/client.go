package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/graphflow/internal/metrics"
	"github.com/BaSui01/graphflow/types"
)

const defaultBaseURL = "https://api.openai.com"

// Config configures the chat client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// RequestsPerMinute enables a client-side limiter when > 0,
	// smoothing bursts before they hit the upstream rate limit.
	RequestsPerMinute int
}

// Client is a minimal chat-completion client for OpenAI-compatible APIs.
// The workflow engine never sees it: a model call is an opaque, possibly
// failing node like any other.
type Client struct {
	cfg       Config
	client    *http.Client
	logger    *zap.Logger
	limiter   *rate.Limiter
	collector *metrics.Collector
}

// Option configures a Client beyond its Config.
type Option func(*Client)

// WithMetrics attaches a collector recording request counts, latency and
// token usage per model.
func WithMetrics(c *metrics.Collector) Option {
	return func(cl *Client) { cl.collector = c }
}

// NewClient creates a chat client. The API key is required; BaseURL and
// Timeout fall back to sensible defaults.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "llm_client")),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OpenAI 的 wire 结构与本包的公开类型分离，便于替换兼容端点
type wireRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

type wireChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type wireResponse struct {
	Model   string       `json:"model"`
	Choices []wireChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
	Error   *wireError   `json:"error,omitempty"`
}

type wireError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Chat performs one chat completion. The engine imposes no timeout of its
// own; cancellation and deadlines flow in through ctx and the configured
// HTTP client timeout.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	if len(req.Messages) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "chat request has no messages")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(wireRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "marshal chat request").WithCause(err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "build chat request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	status := "error"
	var usage Usage
	defer func() {
		if c.collector != nil {
			c.collector.RecordLLMRequest(req.Model, status, time.Since(start), usage.PromptTokens, usage.CompletionTokens)
		}
	}()

	// Token estimation walks the whole prompt, so only pay for it when
	// debug logging is actually enabled.
	if ce := c.logger.Check(zap.DebugLevel, "calling chat completion"); ce != nil {
		ce.Write(
			zap.String("model", req.Model),
			zap.Int("messages", len(req.Messages)),
			zap.Int("prompt_tokens_estimate", c.CountTokens(req.Messages)),
		)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, types.NewError(types.ErrUpstreamError, "chat request failed").
			WithCause(err).WithRetryable(true).WithProvider("openai")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "read chat response").WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(resp.StatusCode, data)
	}

	var wire wireResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "decode chat response").WithCause(err)
	}
	if len(wire.Choices) == 0 {
		return nil, types.NewError(types.ErrUpstreamError, "chat response has no choices")
	}

	status = "success"
	usage = wire.Usage

	c.logger.Debug("chat completion done",
		zap.String("model", wire.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("prompt_tokens", wire.Usage.PromptTokens),
		zap.Int("completion_tokens", wire.Usage.CompletionTokens),
	)

	return &ChatResponse{
		Model:   wire.Model,
		Message: wire.Choices[0].Message,
		Usage:   wire.Usage,
	}, nil
}

// CountTokens estimates the token count of a message list with tiktoken.
// Used for request logging and metrics only; the authoritative numbers come
// back in the response usage.
func (c *Client) CountTokens(messages []Message) int {
	enc, err := tiktoken.EncodingForModel(c.cfg.Model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0
		}
	}
	total := 0
	for _, m := range messages {
		total += len(enc.Encode(m.Content, nil, nil))
	}
	return total
}

func mapHTTPError(status int, body []byte) *types.Error {
	msg := fmt.Sprintf("upstream returned status %d", status)
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error != nil && wire.Error.Message != "" {
		msg = wire.Error.Message
	}

	var code types.ErrorCode
	retryable := false
	switch {
	case status == http.StatusUnauthorized:
		code = types.ErrUnauthorized
	case status == http.StatusForbidden:
		code = types.ErrForbidden
	case status == http.StatusNotFound:
		code = types.ErrModelNotFound
	case status == http.StatusTooManyRequests:
		code = types.ErrRateLimited
		retryable = true
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		code = types.ErrUpstreamTimeout
		retryable = true
	case status == http.StatusServiceUnavailable:
		code = types.ErrServiceUnavailable
		retryable = true
	case status >= 500:
		code = types.ErrUpstreamError
		retryable = true
	default:
		code = types.ErrInvalidRequest
	}
	return types.NewError(code, msg).
		WithHTTPStatus(status).
		WithRetryable(retryable).
		WithProvider("openai")
}
