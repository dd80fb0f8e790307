package analyses

import (
	"context"
	"encoding/json"
	"fmt"

	"caseflow-backend/internal/cases"
	"caseflow-backend/internal/extract"
	"caseflow-backend/internal/llm"
	"caseflow-backend/internal/shared/metrics"
	"caseflow-backend/internal/shared/telemetry"
)

// Documented defaults substituted when a pass degrades.

func defaultSummary() cases.Summary {
	return cases.Summary{
		ExecutiveSummary: "Summary unavailable; the analysis service returned no usable result.",
		KeyTerms:         []string{},
		CriticalDates:    []string{},
		Obligations:      []string{},
	}
}

func defaultInsight() map[string]any {
	return map[string]any{"status": "unavailable"}
}

func defaultCompliance() map[string]any {
	return map[string]any{"status": "unavailable"}
}

func (s *Service) summaryPass(ctx context.Context, category, text string) (cases.Summary, bool) {
	raw, err := s.infer(ctx, llm.SummaryPrompt(category, text))
	if err != nil {
		s.passFailed(ctx, "summary", err)
		return defaultSummary(), true
	}
	candidate, ok := extract.Raw(raw, extract.ShapeObject)
	if !ok {
		s.passUnparseable("summary", raw)
		return defaultSummary(), true
	}
	var summary cases.Summary
	if err := json.Unmarshal(candidate, &summary); err != nil {
		s.passUnparseable("summary", raw)
		return defaultSummary(), true
	}
	if summary.KeyTerms == nil {
		summary.KeyTerms = []string{}
	}
	if summary.CriticalDates == nil {
		summary.CriticalDates = []string{}
	}
	if summary.Obligations == nil {
		summary.Obligations = []string{}
	}
	return summary, false
}

func (s *Service) riskPass(ctx context.Context, category, text string) ([]cases.RiskItem, bool) {
	raw, err := s.infer(ctx, llm.RiskPrompt(category, text))
	if err != nil {
		s.passFailed(ctx, "risks", err)
		return []cases.RiskItem{}, true
	}
	candidate, ok := extract.Raw(raw, extract.ShapeArray)
	if !ok {
		s.passUnparseable("risks", raw)
		return []cases.RiskItem{}, true
	}
	var risks []cases.RiskItem
	if err := json.Unmarshal(candidate, &risks); err != nil {
		s.passUnparseable("risks", raw)
		return []cases.RiskItem{}, true
	}
	for i := range risks {
		risks[i].Severity = clampInt(risks[i].Severity, 1, 5)
		risks[i].Confidence = clampFloat(risks[i].Confidence, 0, 1)
		if risks[i].Mitigations == nil {
			risks[i].Mitigations = []string{}
		}
	}
	return risks, false
}

func (s *Service) suggestionPass(ctx context.Context, category, text string, risks []cases.RiskItem) ([]cases.Suggestion, bool) {
	summaries := make([]string, 0, len(risks))
	for _, r := range risks {
		if r.Severity >= 4 {
			summaries = append(summaries, fmt.Sprintf("%s (severity %d): %s", r.Category, r.Severity, r.Description))
		}
	}

	raw, err := s.infer(ctx, llm.SuggestionPrompt(category, text, summaries))
	if err != nil {
		s.passFailed(ctx, "suggestions", err)
		return []cases.Suggestion{}, true
	}
	candidate, ok := extract.Raw(raw, extract.ShapeArray)
	if !ok {
		s.passUnparseable("suggestions", raw)
		return []cases.Suggestion{}, true
	}
	var suggestions []cases.Suggestion
	if err := json.Unmarshal(candidate, &suggestions); err != nil {
		s.passUnparseable("suggestions", raw)
		return []cases.Suggestion{}, true
	}
	for i := range suggestions {
		if suggestions[i].Type != cases.SuggestionFavorable {
			suggestions[i].Type = cases.SuggestionBalanced
		}
		if suggestions[i].NegotiationTips == nil {
			suggestions[i].NegotiationTips = []string{}
		}
	}
	return suggestions, false
}

func (s *Service) insightPass(ctx context.Context, category, text string) (map[string]any, bool) {
	raw, err := s.infer(ctx, llm.InsightPrompt(category, text))
	if err != nil {
		s.passFailed(ctx, "category_insight", err)
		return defaultInsight(), true
	}
	insight, degraded := extract.Object(raw, defaultInsight())
	if degraded {
		s.passUnparseable("category_insight", raw)
	}
	return insight, degraded
}

func (s *Service) compliancePass(ctx context.Context, category, text string) (map[string]any, bool) {
	raw, err := s.infer(ctx, llm.CompliancePrompt(category, text))
	if err != nil {
		s.passFailed(ctx, "compliance", err)
		return defaultCompliance(), true
	}
	compliance, degraded := extract.Object(raw, defaultCompliance())
	if degraded {
		s.passUnparseable("compliance", raw)
	}
	return compliance, degraded
}

func (s *Service) passFailed(ctx context.Context, pass string, err error) {
	metrics.IncPassDegraded()
	fields := map[string]any{
		"pass":  pass,
		"error": err.Error(),
	}
	if ctx.Err() != nil {
		fields["timeout"] = true
	}
	telemetry.Error("analysis.pass.inference_failed", fields)
}

func (s *Service) passUnparseable(pass, raw string) {
	metrics.IncPassDegraded()
	const maxSample = 200
	sample := raw
	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	telemetry.Error("analysis.pass.unparseable", map[string]any{
		"pass":   pass,
		"sample": sample,
	})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
