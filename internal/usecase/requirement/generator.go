package requirement

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"

	"github.com/google/uuid"
)

// ErrGenerateRequirements is the single user-visible failure of generation;
// no partial list is ever returned with it.
var ErrGenerateRequirements = errors.New("failed to generate requirements")

const (
	maxContextChars = 4000
	generateTemp    = 0.3
)

const generatorSystemPrompt = `You are an expert technical recruiter. You turn job descriptions into precise, weighted evaluation criteria.
Respond with ONLY a JSON array. No prose, no markdown.`

type GenerateInput struct {
	Title       string
	Company     string
	Description string
	// Context holds extracted text of supporting documents.
	Context []string
}

type generatedItem struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	IsRequired  bool    `json:"isRequired"`
}

type Generator struct {
	logger *log.Logger
}

func NewGenerator(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{logger: logger}
}

// Generate asks c for a requirement list. A nil Completer is a hard failure
// with ai.ErrNoCredential. Each returned requirement carries a fresh UUID.
func (g *Generator) Generate(ctx context.Context, c ai.Completer, in GenerateInput) ([]job.Requirement, error) {
	if c == nil {
		return nil, ai.ErrNoCredential
	}

	raw, err := c.Complete(ctx, ai.ChatRequest{
		System:      generatorSystemPrompt,
		Prompt:      buildGeneratePrompt(in),
		Temperature: generateTemp,
	})
	if err != nil {
		g.logger.Printf("requirement_generate status=ai_error err=%v", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerateRequirements, err)
	}

	var items []generatedItem
	if err := ai.DecodeArray(raw, &items); err != nil {
		g.logger.Printf("requirement_generate status=parse_error err=%v", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerateRequirements, err)
	}

	out := make([]job.Requirement, 0, len(items))
	for _, it := range items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			continue
		}
		out = append(out, job.Requirement{
			ID:          uuid.New(),
			Category:    strings.TrimSpace(it.Category),
			Description: desc,
			Weight:      job.ClampWeight(int(math.Round(it.Weight))),
			IsRequired:  it.IsRequired,
			Position:    len(out) + 1,
		})
	}
	if len(out) == 0 {
		g.logger.Printf("requirement_generate status=empty items=%d", len(items))
		return nil, ErrGenerateRequirements
	}
	return out, nil
}

func buildGeneratePrompt(in GenerateInput) string {
	var b strings.Builder
	b.WriteString("Analyze this job posting and produce the evaluation criteria a recruiter should score candidates against.\n\n")
	fmt.Fprintf(&b, "Job title: %s\n", in.Title)
	if in.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", in.Company)
	}
	fmt.Fprintf(&b, "Description:\n%s\n", in.Description)

	for i, doc := range in.Context {
		doc = strings.TrimSpace(doc)
		if doc == "" {
			continue
		}
		doc = ai.Clip(doc, maxContextChars)
		fmt.Fprintf(&b, "\nSupporting document %d:\n%s\n", i+1, doc)
	}

	b.WriteString(`
Return a JSON array where each element is:
{"category": "Technical|Experience|Education|Soft Skills|Other", "description": "specific, measurable criterion", "weight": 1-10, "isRequired": true|false}
Use weight 10 for the most critical criteria. Return between 5 and 12 items.`)
	return b.String()
}
