package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxPromptChars bounds the raw-text slice included in a prompt so requests
// stay inside the provider's input limits.
const MaxPromptChars = 12000

// TruncateForPrompt returns at most MaxPromptChars of text, cut on a rune
// boundary.
func TruncateForPrompt(text string) string {
	if len(text) <= MaxPromptChars {
		return text
	}
	cut := text[:MaxPromptChars]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func categoryLabel(category string) string {
	switch category {
	case "nda":
		return "non-disclosure agreement"
	case "lease":
		return "lease agreement"
	case "employment":
		return "employment contract"
	case "incident":
		return "reported incident"
	case "violation":
		return "reported violation"
	default:
		return "contract"
	}
}

// SummaryPrompt builds the summary-pass prompt.
func SummaryPrompt(category, text string) string {
	return fmt.Sprintf(`You are reviewing a %s.

Return ONLY a JSON object with this shape:
{"executiveSummary": "string", "keyTerms": ["string"], "criticalDates": ["string"], "obligations": ["string"]}

Document:
%s`, categoryLabel(category), TruncateForPrompt(text))
}

// RiskPrompt builds the risk-assessment-pass prompt.
func RiskPrompt(category, text string) string {
	return fmt.Sprintf(`You are assessing risks in a %s.

Return ONLY a JSON array of risk objects:
[{"category": "string", "severity": 1-5, "confidence": 0.0-1.0, "description": "string", "rationale": "string", "mitigations": ["string"]}]

Order risks from most to least severe.

Document:
%s`, categoryLabel(category), TruncateForPrompt(text))
}

// SuggestionPrompt builds the improvement-suggestions prompt. riskSummaries
// gives the high-severity findings that triggered this pass.
func SuggestionPrompt(category, text string, riskSummaries []string) string {
	return fmt.Sprintf(`You are drafting improvement suggestions for a %s. High-severity risks found:
- %s

Return ONLY a JSON array of suggestion objects:
[{"type": "balanced" or "favorable", "originalText": "string (optional)", "suggestedText": "string", "rationale": "string", "negotiationTips": ["string"]}]

Document:
%s`, categoryLabel(category), strings.Join(riskSummaries, "\n- "), TruncateForPrompt(text))
}

// InsightPrompt builds the category-specific insight prompt.
func InsightPrompt(category, text string) string {
	var focus string
	switch category {
	case "nda":
		focus = "confidentiality scope, term, residuals, and injunctive-relief clauses"
	case "lease":
		focus = "rent escalation, maintenance allocation, termination, and deposit terms"
	case "employment":
		focus = "compensation, non-compete scope, IP assignment, and termination terms"
	case "incident", "violation":
		focus = "root cause, responsible parties, regulatory exposure, and recurrence indicators"
	default:
		focus = "payment terms, liability allocation, termination, and dispute resolution"
	}
	return fmt.Sprintf(`You are reviewing a %s. Focus on %s.

Return ONLY a JSON object with your findings (free structure, string and list values).

Document:
%s`, categoryLabel(category), focus, TruncateForPrompt(text))
}

// CompliancePrompt builds the compliance-check prompt.
func CompliancePrompt(category, text string) string {
	return fmt.Sprintf(`You are checking a %s for compliance concerns (statutory, regulatory, policy).

Return ONLY a JSON object with your findings (free structure, string and list values).

Document:
%s`, categoryLabel(category), TruncateForPrompt(text))
}
