package cases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"caseflow-backend/internal/notify"
	"caseflow-backend/internal/reminders"
	"caseflow-backend/internal/scoring"
	"caseflow-backend/internal/shared/metrics"
	"caseflow-backend/internal/shared/storage/object"
	"caseflow-backend/internal/shared/telemetry"
)

// Service contains business logic for the case lifecycle: creation, score
// evaluation, and escalation state transitions.
type Service struct {
	Repo      Repo
	Store     object.ObjectStore
	Notifier  notify.Client
	Reminders *reminders.Scheduler
	// ReviewRecipients receives escalation notifications (the review body).
	ReviewRecipients []string
}

// CreateInput carries the fields needed to open a case. Callers provide
// either the raw document text inline or the storage key of an already
// uploaded document.
type CreateInput struct {
	SubjectName    string
	SubjectAddress string
	Category       string
	RawText        string
	RawTextKey     string
}

// Create opens a new case, dispatches the initial notification, and runs the
// first score evaluation. Notification and scoring failures never fail
// creation.
func (s *Service) Create(ctx context.Context, in CreateInput) (Case, error) {
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if !ValidCategory(category) {
		return Case{}, ErrUnknownCategory
	}

	rawTextKey := in.RawTextKey
	if rawTextKey == "" {
		if strings.TrimSpace(in.RawText) == "" {
			return Case{}, errors.New("rawText or rawTextKey is required")
		}
		if s.Store == nil {
			return Case{}, errors.New("no object store configured for inline text")
		}
		key, _, _, err := s.Store.Save(ctx, category, "case.txt", strings.NewReader(in.RawText))
		if err != nil {
			return Case{}, err
		}
		rawTextKey = key
	}

	now := time.Now().UTC()
	c := Case{
		ID:             uuid.NewString(),
		SubjectName:    strings.TrimSpace(in.SubjectName),
		SubjectAddress: strings.TrimSpace(in.SubjectAddress),
		Category:       category,
		RawTextKey:     rawTextKey,
		Status:         StatusOpen,
		Score:          1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Case{}, err
	}

	s.dispatch(ctx, notify.TemplateInitial, c, nil)

	if _, err := s.EvaluateScore(ctx, c.ID); err != nil {
		telemetry.Error("case.score", map[string]any{
			"case_id": c.ID,
			"error":   err.Error(),
		})
	}

	return s.Repo.GetByID(ctx, c.ID)
}

// Get returns a case by ID.
func (s *Service) Get(ctx context.Context, caseID string) (Case, error) {
	if caseID == "" {
		return Case{}, errors.New("caseID is required")
	}
	return s.Repo.GetByID(ctx, caseID)
}

// List returns cases newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Case, error) {
	return s.Repo.List(ctx, limit, offset)
}

// EvaluateScore recomputes the case's repeat-offense score from prior cases,
// persists it, schedules the tier's reminder plan, and auto-escalates open
// cases at or above the threshold. A repository read failure falls back to
// the conservative tier 1 with a warning; it never blocks the caller.
func (s *Service) EvaluateScore(ctx context.Context, caseID string) (int, error) {
	c, err := s.Repo.GetByID(ctx, caseID)
	if err != nil {
		return 0, err
	}

	score := 1
	priors, err := s.Repo.ListPriorBySubject(ctx, c.SubjectName, c.SubjectAddress, c.CreatedAt)
	if err != nil {
		telemetry.Error("case.score.data_unavailable", map[string]any{
			"case_id": c.ID,
			"error":   err.Error(),
		})
	} else {
		subjects := make([]scoring.Subject, 0, len(priors))
		for _, p := range priors {
			subjects = append(subjects, scoring.Subject{Name: p.SubjectName, Address: p.SubjectAddress})
		}
		score = scoring.Score(scoring.MatchCount(scoring.Subject{Name: c.SubjectName, Address: c.SubjectAddress}, subjects))
	}

	if err := s.Repo.UpdateScore(ctx, c.ID, score); err != nil {
		return 0, err
	}
	metrics.IncScoreComputed()

	s.scheduleReminders(ctx, c.ID, score)

	if score >= EscalationThreshold && c.Status == StatusOpen {
		s.autoEscalate(ctx, c, score)
	}

	return score, nil
}

// Transition moves the case to target, enforcing the lifecycle table and
// serializing against concurrent transitions via compare-and-swap. Entering
// Escalated triggers the escalation notification and the reminder plan.
func (s *Service) Transition(ctx context.Context, caseID string, target Status, resolution *Resolution) (Case, error) {
	c, err := s.Repo.GetByID(ctx, caseID)
	if err != nil {
		return Case{}, err
	}

	if target == StatusResolved && resolution != nil && resolution.ResolvedAt.IsZero() {
		resolution.ResolvedAt = time.Now().UTC()
	}
	if err := ValidateTransition(c.Status, target, c.Score, resolution); err != nil {
		return Case{}, err
	}

	if err := s.Repo.UpdateStatus(ctx, caseID, c.Status, target, resolution); err != nil {
		return Case{}, err
	}
	telemetry.Info("case.status", map[string]any{
		"case_id":           c.ID,
		"status_transition": string(c.Status) + "->" + string(target),
	})

	if target == StatusEscalated {
		s.onEscalated(ctx, c, c.Score)
	}

	return s.Repo.GetByID(ctx, caseID)
}

// RecomputeScores recomputes every case's score in ascending createdAt
// order, since each score depends only on strictly earlier cases. It returns
// the number of cases whose score changed. Batch recomputation performs no
// escalation or reminder side effects.
func (s *Service) RecomputeScores(ctx context.Context) (int, error) {
	all, err := s.Repo.ListAscending(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i, c := range all {
		var priors []scoring.Subject
		for _, earlier := range all[:i] {
			if earlier.CreatedAt.Before(c.CreatedAt) {
				priors = append(priors, scoring.Subject{Name: earlier.SubjectName, Address: earlier.SubjectAddress})
			}
		}
		score := scoring.Score(scoring.MatchCount(scoring.Subject{Name: c.SubjectName, Address: c.SubjectAddress}, priors))
		if score == c.Score {
			continue
		}
		if err := s.Repo.UpdateScore(ctx, c.ID, score); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// autoEscalate fires the one-shot Open -> Escalated transition. Losing the
// race to another transition is fine; someone else already moved the case.
func (s *Service) autoEscalate(ctx context.Context, c Case, score int) {
	if err := s.Repo.UpdateStatus(ctx, c.ID, StatusOpen, StatusEscalated, nil); err != nil {
		if !errors.Is(err, ErrStatusConflict) {
			telemetry.Error("case.escalate", map[string]any{
				"case_id": c.ID,
				"error":   err.Error(),
			})
		}
		return
	}
	telemetry.Info("case.status", map[string]any{
		"case_id":           c.ID,
		"score":             score,
		"status_transition": "open->escalated",
	})
	s.onEscalated(ctx, c, score)
}

// onEscalated runs the side effects of entering Escalated. Both belong to a
// separate failure domain from the transition itself.
func (s *Service) onEscalated(ctx context.Context, c Case, score int) {
	metrics.IncCaseEscalated()
	s.dispatch(ctx, notify.TemplateEscalation, c, map[string]any{"score": score})
	s.scheduleReminders(ctx, c.ID, score)
}

func (s *Service) scheduleReminders(ctx context.Context, caseID string, tier int) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.Schedule(ctx, caseID, tier); err != nil {
		metrics.IncSchedulingFailed()
		telemetry.Error("reminder.schedule", map[string]any{
			"case_id": caseID,
			"tier":    tier,
			"error":   err.Error(),
		})
		return
	}
	metrics.IncRemindersScheduled()
}

func (s *Service) dispatch(ctx context.Context, template string, c Case, extra map[string]any) {
	if s.Notifier == nil {
		return
	}
	data := map[string]any{
		"caseId":   c.ID,
		"category": c.Category,
		"subject":  c.SubjectName,
	}
	for k, v := range extra {
		data[k] = v
	}
	if err := s.Notifier.Notify(ctx, s.ReviewRecipients, template, data); err != nil {
		metrics.IncNotificationFailed()
		telemetry.Error("notify.dispatch", map[string]any{
			"case_id":  c.ID,
			"template": template,
			"error":    err.Error(),
		})
	}
}
