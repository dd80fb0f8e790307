package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caseflow-backend/internal/scheduler"
)

func TestPlanByTier(t *testing.T) {
	assert.Equal(t, []int{3, 7, 14}, Plan(5))
	assert.Equal(t, []int{3, 7, 14}, Plan(4))
	assert.Equal(t, []int{7, 14}, Plan(3))
	assert.Equal(t, []int{14}, Plan(2))
	assert.Equal(t, []int{30}, Plan(1))
	assert.Equal(t, []int{30}, Plan(0))
}

func TestScheduleIsIdempotent(t *testing.T) {
	tasks := scheduler.NewMemoryClient()
	s := &Scheduler{
		Tasks: tasks,
		Now:   func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}

	require.NoError(t, s.Schedule(context.Background(), "case-1", 4))
	require.NoError(t, s.Schedule(context.Background(), "case-1", 4))

	want := []string{
		"reminder:case-1:14",
		"reminder:case-1:3",
		"reminder:case-1:7",
	}
	assert.Equal(t, want, tasks.Pending(), "re-scheduling the same plan must not create duplicates")
}

func TestScheduleFireTimes(t *testing.T) {
	tasks := scheduler.NewMemoryClient()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Scheduler{Tasks: tasks, Now: func() time.Time { return base }}

	require.NoError(t, s.Schedule(context.Background(), "case-2", 1))

	due, err := tasks.ClaimDue(context.Background(), base.AddDate(0, 0, 30), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "case-2", due[0].Payload.CaseID)
	assert.Equal(t, 30, due[0].Payload.OffsetDay)
	assert.Equal(t, base.AddDate(0, 0, 30), due[0].FireAt)
}

func TestScheduleDifferentCasesIndependent(t *testing.T) {
	tasks := scheduler.NewMemoryClient()
	s := &Scheduler{Tasks: tasks}

	require.NoError(t, s.Schedule(context.Background(), "case-a", 2))
	require.NoError(t, s.Schedule(context.Background(), "case-b", 2))
	assert.Len(t, tasks.Pending(), 2)
}
