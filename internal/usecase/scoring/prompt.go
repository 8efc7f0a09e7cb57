package scoring

import (
	"fmt"
	"strings"

	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
)

const maxResumeChars = 12000

const systemPrompt = `You are a senior technical recruiter evaluating a candidate's résumé against weighted job requirements.
Score every requirement from 1 (no evidence) to 10 (exceptional, clearly demonstrated).
Every comment must cite concrete evidence from the résumé; when there is none, say so and score low.
Respond with ONLY a JSON object. No prose, no markdown.`

func buildPrompt(j job.Job, resume string) string {
	resume = ai.Clip(resume, maxResumeChars)

	var b strings.Builder
	fmt.Fprintf(&b, "Job title: %s\n", j.Title)
	if j.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", j.Company)
	}
	if j.Description != "" {
		fmt.Fprintf(&b, "Job description:\n%s\n", j.Description)
	}

	b.WriteString("\nRequirements (score each one, keep the ids exactly):\n")
	for i, r := range j.Requirements {
		flag := "optional"
		if r.IsRequired {
			flag = "required"
		}
		category := r.Category
		if category == "" {
			category = "General"
		}
		fmt.Fprintf(&b, "%d. id=%s [%s, weight %d, %s] %s\n", i+1, r.ID, category, r.Weight, flag, r.Description)
	}

	fmt.Fprintf(&b, "\nRésumé:\n%s\n", resume)
	b.WriteString(`
Return this JSON object:
{
  "scores": [{"requirementId": "<id from the list>", "score": 1-10, "comment": "evidence-based justification"}],
  "overallScore": 0-10,
  "strengths": ["..."],
  "weaknesses": ["..."],
  "personalityTraits": ["..."],
  "cultureFit": {"score": 1-10, "notes": "..."},
  "leadershipPotential": {"score": 1-10, "notes": "..."},
  "skillAssessment": {"technicalSkills": ["..."], "softSkills": ["..."], "experienceEvaluation": "..."},
  "notes": "..."
}
Include exactly one score per requirement, in the order listed.`)
	return b.String()
}
