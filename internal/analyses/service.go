// Package analyses orchestrates the multi-pass analysis of a case document.
//
// Five passes run against the inference service: summary, risk assessment,
// improvement suggestions, category-specific insight, and compliance. Each
// pass is independently fault tolerant; an inference failure or unparseable
// response substitutes that pass's documented default and marks the report
// degraded, never aborting the remaining passes.
package analyses

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"caseflow-backend/internal/cases"
	"caseflow-backend/internal/llm"
	"caseflow-backend/internal/shared/metrics"
	"caseflow-backend/internal/shared/storage/object"
	"caseflow-backend/internal/shared/telemetry"
)

const defaultPassTimeout = 45 * time.Second

// ScoreEvaluator recomputes a case's score once a fresh report lands.
type ScoreEvaluator interface {
	EvaluateScore(ctx context.Context, caseID string) (int, error)
}

// Service runs analysis passes and persists the aggregated report.
type Service struct {
	Cases    cases.Repo
	Store    object.ObjectStore
	LLM      llm.Client
	Provider string
	Model    string
	// PassTimeout bounds each individual inference call. Zero means the
	// default.
	PassTimeout time.Duration
	// Evaluator, if set, runs score evaluation after the report persists.
	// Its failures are logged, never surfaced to the analysis caller.
	Evaluator ScoreEvaluator
}

// Run executes all passes for the case and persists the aggregated report as
// one atomic write. From the caller's perspective analysis always succeeds
// once the document is loaded; degraded passes are reported in the result,
// not as errors.
func (s *Service) Run(ctx context.Context, caseID string) (cases.AnalysisReport, error) {
	c, err := s.Cases.GetByID(ctx, caseID)
	if err != nil {
		return cases.AnalysisReport{}, err
	}
	text, err := s.loadText(ctx, c.RawTextKey)
	if err != nil {
		return cases.AnalysisReport{}, fmt.Errorf("load case text %s: %w", c.RawTextKey, err)
	}

	startedAt := time.Now().UTC()
	metrics.IncAnalysisStarted()

	// The first four passes share no state and run concurrently. Pass
	// failures are absorbed per-pass, so the group never sees an error.
	var (
		summary            cases.Summary
		summaryDegraded    bool
		risks              []cases.RiskItem
		risksDegraded      bool
		insight            map[string]any
		insightDegraded    bool
		compliance         map[string]any
		complianceDegraded bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, summaryDegraded = s.summaryPass(gctx, c.Category, text)
		return nil
	})
	g.Go(func() error {
		risks, risksDegraded = s.riskPass(gctx, c.Category, text)
		return nil
	})
	g.Go(func() error {
		insight, insightDegraded = s.insightPass(gctx, c.Category, text)
		return nil
	})
	g.Go(func() error {
		compliance, complianceDegraded = s.compliancePass(gctx, c.Category, text)
		return nil
	})
	_ = g.Wait()

	// Suggestions depend on the risk findings and only run when something
	// severe enough surfaced; otherwise the pass is skipped entirely.
	suggestions := []cases.Suggestion{}
	suggestionsDegraded := false
	if hasSevereRisk(risks) {
		suggestions, suggestionsDegraded = s.suggestionPass(ctx, c.Category, text, risks)
	}

	report := cases.AnalysisReport{
		Summary:         summary,
		Risks:           risks,
		Suggestions:     suggestions,
		CategoryInsight: insight,
		Compliance:      compliance,
		Degraded:        summaryDegraded || risksDegraded || insightDegraded || complianceDegraded || suggestionsDegraded,
		Provider:        s.Provider,
		Model:           s.Model,
		GeneratedAt:     time.Now().UTC(),
	}

	if err := s.Cases.UpdateReport(ctx, caseID, &report); err != nil {
		return cases.AnalysisReport{}, fmt.Errorf("persist analysis report: %w", err)
	}

	completedAt := time.Now().UTC()
	metrics.IncAnalysisCompleted()
	if report.Degraded {
		metrics.IncAnalysisDegraded()
	}
	metrics.ObserveAnalysisDurationMs(float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0)
	telemetry.Info("analysis.complete", map[string]any{
		"case_id":     caseID,
		"category":    c.Category,
		"degraded":    report.Degraded,
		"risk_count":  len(report.Risks),
		"duration_ms": float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0,
	})

	if s.Evaluator != nil {
		if _, err := s.Evaluator.EvaluateScore(ctx, caseID); err != nil {
			telemetry.Error("analysis.score", map[string]any{
				"case_id": caseID,
				"error":   err.Error(),
			})
		}
	}

	return report, nil
}

func (s *Service) passTimeout() time.Duration {
	if s.PassTimeout > 0 {
		return s.PassTimeout
	}
	return defaultPassTimeout
}

// infer runs one bounded inference call.
func (s *Service) infer(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.passTimeout())
	defer cancel()
	return s.LLM.Infer(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   2048,
	})
}

func (s *Service) loadText(ctx context.Context, key string) (string, error) {
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func hasSevereRisk(risks []cases.RiskItem) bool {
	for _, r := range risks {
		if r.Severity >= 4 {
			return true
		}
	}
	return false
}
