// Package reminders derives the follow-up reminder plan for a case from its
// score tier and registers it with the deferred-task scheduler.
package reminders

import (
	"context"
	"fmt"
	"time"

	"caseflow-backend/internal/notify"
	"caseflow-backend/internal/scheduler"
)

// Plan returns the day offsets for a score tier. Higher tiers get earlier
// and more frequent follow-ups.
func Plan(tier int) []int {
	switch {
	case tier >= 4:
		return []int{3, 7, 14}
	case tier == 3:
		return []int{7, 14}
	case tier == 2:
		return []int{14}
	default:
		return []int{30}
	}
}

// TaskKey is the deferred-task identity for one reminder. Re-deriving the
// same plan yields the same keys, so re-scheduling is a no-op.
func TaskKey(caseID string, offsetDay int) string {
	return fmt.Sprintf("reminder:%s:%d", caseID, offsetDay)
}

// Scheduler registers reminder plans with the deferred-task collaborator.
type Scheduler struct {
	Tasks scheduler.Client
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Schedule registers the tier's plan for the case. Offsets that already have
// a scheduled-but-unfired task are left untouched. Partial failures schedule
// what they can and report the first error.
func (s *Scheduler) Schedule(ctx context.Context, caseID string, tier int) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	base := now().UTC()

	var firstErr error
	for _, offset := range Plan(tier) {
		payload := scheduler.Payload{
			CaseID:    caseID,
			OffsetDay: offset,
			Template:  notify.TemplateReminder,
			Version:   1,
		}
		fireAt := base.AddDate(0, 0, offset)
		if err := s.Tasks.Schedule(ctx, TaskKey(caseID, offset), fireAt, payload); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("schedule reminder day %d: %w", offset, err)
		}
	}
	return firstErr
}
