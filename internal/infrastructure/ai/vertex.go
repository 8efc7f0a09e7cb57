package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hireflow/internal/config"

	"cloud.google.com/go/vertexai/genai"
)

// VertexProvider calls Gemini through Vertex AI using application default
// credentials; the project id stands in for an API key.
type VertexProvider struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewVertex(ctx context.Context, cfg config.AIConfig) (*VertexProvider, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, ErrNoCredential
	}
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexProvider{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (p *VertexProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	// GenerativeModel carries per-call settings, so build one per request.
	m := p.client.GenerativeModel(p.model)

	temp := req.Temperature
	if temp <= 0 {
		temp = p.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	m.SetTemperature(float32(temp))
	if maxTokens > 0 {
		m.SetMaxOutputTokens(int32(maxTokens))
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates returned")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty completion")
	}
	return b.String(), nil
}

func (p *VertexProvider) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
