package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PGClient stores deferred tasks in Postgres. The unique task key makes
// scheduling idempotent, and claiming uses SKIP LOCKED so multiple workers
// can poll the same table.
type PGClient struct {
	DB *sql.DB
}

// Schedule inserts a task; a duplicate unfired key is a no-op.
func (c *PGClient) Schedule(ctx context.Context, key string, fireAt time.Time, payload Payload) error {
	body, err := EncodePayload(payload)
	if err != nil {
		return fmt.Errorf("encode task payload: %w", err)
	}
	const query = `
INSERT INTO deferred_tasks (task_key, fire_at, payload, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (task_key) DO NOTHING`
	if _, err := c.DB.ExecContext(ctx, query, key, fireAt.UTC(), body, time.Now().UTC()); err != nil {
		return fmt.Errorf("schedule task %s: %w", key, err)
	}
	return nil
}

// ClaimDue marks due tasks fired and returns them.
func (c *PGClient) ClaimDue(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
UPDATE deferred_tasks SET fired_at = $1
WHERE task_key IN (
	SELECT task_key FROM deferred_tasks
	WHERE fired_at IS NULL AND fire_at <= $1
	ORDER BY fire_at
	FOR UPDATE SKIP LOCKED
	LIMIT $2
)
RETURNING task_key, fire_at, payload`
	rows, err := c.DB.QueryContext(ctx, query, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("claim due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var task Task
		var body []byte
		if err := rows.Scan(&task.Key, &task.FireAt, &body); err != nil {
			return nil, err
		}
		payload, err := DecodePayload(body)
		if err != nil {
			return nil, fmt.Errorf("decode task %s payload: %w", task.Key, err)
		}
		task.Payload = payload
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

var _ Client = (*PGClient)(nil)
