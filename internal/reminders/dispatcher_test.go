package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caseflow-backend/internal/notify"
	"caseflow-backend/internal/scheduler"
)

func TestDispatcherFiresDueReminders(t *testing.T) {
	tasks := scheduler.NewMemoryClient()
	notifier := notify.NewMemoryClient()
	base := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

	sched := &Scheduler{Tasks: tasks, Now: func() time.Time { return base }}
	require.NoError(t, sched.Schedule(context.Background(), "case-1", 4))

	d := &Dispatcher{Tasks: tasks, Notifier: notifier, Recipients: []string{"review-board@example.com"}}

	fired, err := d.RunOnce(context.Background(), base.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Equal(t, 2, fired)

	sent := notifier.SentWithTemplate(notify.TemplateReminder)
	require.Len(t, sent, 2)
	require.Equal(t, "case-1", sent[0].Data["caseId"])

	// The day-14 task stays pending; nothing fires twice.
	fired, err = d.RunOnce(context.Background(), base.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Zero(t, fired)
	require.Equal(t, []string{TaskKey("case-1", 14)}, tasks.Pending())
}

func TestDispatcherAbsorbsNotifyFailures(t *testing.T) {
	tasks := scheduler.NewMemoryClient()
	notifier := notify.NewMemoryClient()
	notifier.FailWith(errors.New("queue unavailable"))
	base := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

	sched := &Scheduler{Tasks: tasks, Now: func() time.Time { return base }}
	require.NoError(t, sched.Schedule(context.Background(), "case-1", 1))

	d := &Dispatcher{Tasks: tasks, Notifier: notifier, Recipients: []string{"review-board@example.com"}}

	fired, err := d.RunOnce(context.Background(), base.AddDate(0, 0, 31))
	require.NoError(t, err)
	require.Equal(t, 1, fired)
	require.Empty(t, tasks.Pending(), "claimed tasks are not retried")
}
