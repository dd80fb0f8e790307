package reminders

import (
	"context"
	"time"

	"caseflow-backend/internal/notify"
	"caseflow-backend/internal/scheduler"
	"caseflow-backend/internal/shared/metrics"
	"caseflow-backend/internal/shared/telemetry"
)

// Dispatcher claims due reminder tasks and turns each into a reminder
// notification. A task is claimed exactly once; a notification failure is
// logged and counted but the task is not retried, matching the at-most-once
// contract of the schedule.
type Dispatcher struct {
	Tasks      scheduler.Client
	Notifier   notify.Client
	Recipients []string
	// BatchSize bounds how many tasks one poll claims. Zero means the
	// client default.
	BatchSize int
}

// RunOnce claims tasks due at now and dispatches them. It returns how many
// tasks were claimed.
func (d *Dispatcher) RunOnce(ctx context.Context, now time.Time) (int, error) {
	tasks, err := d.Tasks.ClaimDue(ctx, now, d.BatchSize)
	if err != nil {
		return 0, err
	}

	for _, task := range tasks {
		metrics.IncRemindersFired()
		telemetry.Info("reminder.fired", map[string]any{
			"task_key":   task.Key,
			"case_id":    task.Payload.CaseID,
			"offset_day": task.Payload.OffsetDay,
		})
		data := map[string]any{
			"caseId":    task.Payload.CaseID,
			"offsetDay": task.Payload.OffsetDay,
		}
		if err := d.Notifier.Notify(ctx, d.Recipients, notify.TemplateReminder, data); err != nil {
			metrics.IncNotificationFailed()
			telemetry.Error("reminder.dispatch", map[string]any{
				"task_key": task.Key,
				"case_id":  task.Payload.CaseID,
				"error":    err.Error(),
			})
		}
	}
	return len(tasks), nil
}
