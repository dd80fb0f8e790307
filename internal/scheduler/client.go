// Package scheduler provides the deferred-task collaborator used for
// follow-up reminders. Scheduling is idempotent per task key: scheduling the
// same key twice results in exactly one task.
package scheduler

import (
	"context"
	"encoding/json"
	"time"
)

// Payload is the JSON body attached to a deferred task.
type Payload struct {
	CaseID    string `json:"caseId"`
	OffsetDay int    `json:"offsetDay"`
	Template  string `json:"template"`
	Version   int    `json:"version"`
}

// EncodePayload returns the JSON representation of a payload.
func EncodePayload(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload parses a JSON payload.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Task is a scheduled-but-unfired deferred task.
type Task struct {
	Key     string
	FireAt  time.Time
	Payload Payload
}

// Client schedules and claims deferred tasks.
type Client interface {
	// Schedule registers a task. It is a no-op if an unfired task with the
	// same key already exists.
	Schedule(ctx context.Context, key string, fireAt time.Time, payload Payload) error
	// ClaimDue claims up to limit tasks due at now, marking them fired so
	// concurrent workers never claim the same task twice.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]Task, error)
}
