package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryClient stores deferred tasks in memory and is safe for concurrent
// use. It mirrors PGClient's idempotency and claim semantics for tests.
type MemoryClient struct {
	mu    sync.Mutex
	tasks map[string]*memoryTask
}

type memoryTask struct {
	task  Task
	fired bool
}

// NewMemoryClient constructs a MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{tasks: make(map[string]*memoryTask)}
}

// Schedule registers a task; duplicate unfired keys are no-ops.
func (c *MemoryClient) Schedule(ctx context.Context, key string, fireAt time.Time, payload Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.tasks[key]; ok && !existing.fired {
		return nil
	}
	c.tasks[key] = &memoryTask{task: Task{Key: key, FireAt: fireAt.UTC(), Payload: payload}}
	return nil
}

// ClaimDue marks due tasks fired and returns them ordered by fire time.
func (c *MemoryClient) ClaimDue(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var due []*memoryTask
	for _, mt := range c.tasks {
		if !mt.fired && !mt.task.FireAt.After(now.UTC()) {
			due = append(due, mt)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].task.FireAt.Before(due[j].task.FireAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	out := make([]Task, 0, len(due))
	for _, mt := range due {
		mt.fired = true
		out = append(out, mt.task)
	}
	return out, nil
}

// Pending returns the unfired task keys, for tests.
func (c *MemoryClient) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for key, mt := range c.tasks {
		if !mt.fired {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

var _ Client = (*MemoryClient)(nil)
