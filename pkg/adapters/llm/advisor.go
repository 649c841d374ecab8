// Package llm implements ports.RepairAdvisor on top of an OpenAI-compatible
// chat completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("llm: api key not set")

// Config configures the advisor.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Temperature is passed through as-is. Zero lets the server choose.
	Temperature float32
	MaxTokens   int
	// Timeout bounds each Propose call. Zero means no extra bound.
	Timeout time.Duration
}

// Advisor asks a chat model for a structured repair.
type Advisor struct {
	client *openai.Client
	cfg    Config
	system string
	logger *slog.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithLogger sets the logger for the advisor.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Advisor) {
		a.logger = logger
	}
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Advisor) {
		a.system = prompt
	}
}

// New creates an advisor. BaseURL points the client at any OpenAI-compatible
// server (a local gateway, a test server).
func New(cfg Config, opts ...Option) (*Advisor, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	a := &Advisor{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		system: systemPrompt,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Model returns the model the advisor talks to.
func (a *Advisor) Model() string {
	return a.cfg.Model
}

// Propose implements ports.RepairAdvisor.
func (a *Advisor) Propose(ctx context.Context, req ports.RepairRequest) (*domain.Resolution, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	chat := openai.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: a.system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: a.cfg.Temperature,
	}
	if a.cfg.MaxTokens > 0 {
		chat.MaxCompletionTokens = a.cfg.MaxTokens
	}

	a.logger.Debug("requesting repair", "model", a.cfg.Model, "conflict", req.Conflict.Kind, "nodes", req.Conflict.Nodes)
	resp, err := a.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		a.logger.Warn("advisor call failed", "err", err)
		return nil, fmt.Errorf("advisor call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("advisor returned no choices")
	}

	choice := resp.Choices[0]
	a.logger.Debug("advisor replied", "finish_reason", choice.FinishReason, "tokens", resp.Usage.TotalTokens)
	return ParseResolution(choice.Message.Content)
}
