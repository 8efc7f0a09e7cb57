package report

import (
	"fmt"
	"sort"
	"strings"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/report"
)

const (
	strongScore    = 7.0
	potentialScore = 5.0
	topN           = 3
)

// rank orders candidates by overall score, unscored ones last, ties by name.
func rank(cands []candidate.Candidate) []candidate.Candidate {
	out := append([]candidate.Candidate(nil), cands...)
	sort.SliceStable(out, func(i, k int) bool {
		a, b := out[i], out[k]
		if a.IsProcessed() != b.IsProcessed() {
			return a.IsProcessed()
		}
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		return a.Name < b.Name
	})
	return out
}

func rankings(ranked []candidate.Candidate) []report.Ranking {
	out := make([]report.Ranking, 0, len(ranked))
	for i, c := range ranked {
		out = append(out, report.Ranking{CandidateID: c.ID, Rank: i + 1, Score: c.OverallScore})
	}
	return out
}

func recommendation(top float64) string {
	switch {
	case top >= strongScore:
		return "recommended for immediate consideration"
	case top >= potentialScore:
		return "shows potential"
	default:
		return "none fully meet requirements"
	}
}

// fallbackReport assembles the report from stored scores alone.
func fallbackReport(j job.Job, ranked []candidate.Candidate, additionalPrompt string) (title, summary, content string) {
	title = "Candidate Comparison: " + j.Title

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Job Overview\n\n")
	fmt.Fprintf(&b, "- **Title:** %s\n", j.Title)
	writeField(&b, "Company", j.Company)
	writeField(&b, "Location", j.Location)
	writeField(&b, "Department", j.Department)
	if d := strings.TrimSpace(j.Description); d != "" {
		fmt.Fprintf(&b, "\n%s\n", d)
	}

	b.WriteString("\n## Requirements\n\n")
	for _, r := range j.Requirements {
		fmt.Fprintf(&b, "- **%s** (%s, weight %d%s)\n", r.Description, category(r), r.Weight, requiredSuffix(r))
	}

	b.WriteString("\n## Candidate Rankings\n\n")
	for i, c := range ranked {
		fmt.Fprintf(&b, "### %d. %s (Overall: %.1f/10)\n\n", i+1, c.Name, c.OverallScore)
		if !c.IsProcessed() {
			b.WriteString("_Not yet scored._\n\n")
			continue
		}
		writeList(&b, "Strengths", c.Strengths)
		writeList(&b, "Weaknesses", c.Weaknesses)
		b.WriteString("**Detailed Scores:**\n\n")
		for _, r := range j.Requirements {
			line := fmt.Sprintf("- %s: %d/10", r.Description, candidate.ScoreFor(c.Scores, r.ID.String()))
			if cm := commentFor(c.Scores, r.ID.String()); cm != "" {
				line += " (" + cm + ")"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Comparison Summary\n\n")
	var top candidate.Candidate
	if len(ranked) > 0 {
		top = ranked[0]
		fmt.Fprintf(&b, "The top candidate is **%s** with an overall score of %.1f/10.\n\n", top.Name, top.OverallScore)
		names := make([]string, 0, topN)
		for i := 0; i < len(ranked) && i < topN; i++ {
			names = append(names, fmt.Sprintf("%s (%.1f)", ranked[i].Name, ranked[i].OverallScore))
		}
		fmt.Fprintf(&b, "Top %d: %s.\n\n", len(names), strings.Join(names, ", "))
	}

	b.WriteString("## Recommendations\n\n")
	switch rec := recommendation(top.OverallScore); {
	case top.OverallScore >= strongScore:
		fmt.Fprintf(&b, "%s is %s.\n", top.Name, rec)
	case top.OverallScore >= potentialScore:
		fmt.Fprintf(&b, "%s %s but should be validated in interviews.\n", top.Name, rec)
	default:
		fmt.Fprintf(&b, "Based on the current scores, %s. Consider widening the search or revisiting the requirements.\n", rec)
	}

	if p := strings.TrimSpace(additionalPrompt); p != "" {
		fmt.Fprintf(&b, "\n## Additional Focus\n\n%s\n", p)
	}

	if len(ranked) > 0 {
		summary = fmt.Sprintf("%d candidates compared for %s. Top candidate: %s (%.1f/10), %s.",
			len(ranked), j.Title, top.Name, top.OverallScore, recommendation(top.OverallScore))
	}
	return title, summary, b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "- **%s:** %s\n", label, value)
	}
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n\n", label)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func commentFor(scores []candidate.Score, reqID string) string {
	for _, s := range scores {
		if s.RequirementID == reqID {
			return strings.TrimSpace(s.Comment)
		}
	}
	return ""
}

func category(r job.Requirement) string {
	if r.Category == "" {
		return "General"
	}
	return r.Category
}

func requiredSuffix(r job.Requirement) string {
	if r.IsRequired {
		return ", required"
	}
	return ""
}
