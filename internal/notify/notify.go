// Package notify decides when, to whom, and with which template a
// notification goes out. Actual delivery belongs to an external dispatcher;
// this package only hands messages over. Dispatch failures are a separate
// failure domain: callers log and count them, they never roll back the
// triggering transaction.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Notification templates.
const (
	TemplateInitial    = "initial"
	TemplateEscalation = "escalation"
	TemplateReminder   = "reminder"
)

// Message is the payload handed to the external dispatcher.
type Message struct {
	Recipients []string       `json:"recipients"`
	Template   string         `json:"template"`
	Data       map[string]any `json:"data"`
	EnqueuedAt string         `json:"enqueuedAt"`
	Version    int            `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Client hands notifications to the external dispatcher.
type Client interface {
	Notify(ctx context.Context, recipients []string, template string, data map[string]any) error
}

// NewMessage builds a Message stamped with the current time.
func NewMessage(recipients []string, template string, data map[string]any) Message {
	return Message{
		Recipients: recipients,
		Template:   template,
		Data:       data,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}
}
