package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hireflow/internal/config"

	"github.com/anatolykoptev/go-kit/llm"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client      *llm.Client
	temperature float64
	maxTokens   int
}

func NewOpenAI(cfg config.AIConfig, apiKey string) (*OpenAIProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("ai base url and model are required")
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	client := llm.NewClient(cfg.BaseURL, apiKey, cfg.Model,
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(cfg.Temperature),
		llm.WithHTTPClient(hc),
	)

	return &OpenAIProvider{
		client:      client,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	temp := req.Temperature
	if temp <= 0 {
		temp = p.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	out, err := p.client.Complete(ctx, req.System, req.Prompt,
		llm.WithChatTemperature(temp),
		llm.WithChatMaxTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
