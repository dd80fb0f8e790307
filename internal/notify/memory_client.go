package notify

import (
	"context"
	"sync"
)

// MemoryClient records notifications for tests.
type MemoryClient struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

// NewMemoryClient constructs a MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// FailWith makes subsequent Notify calls return err.
func (c *MemoryClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Notify records the message.
func (c *MemoryClient) Notify(ctx context.Context, recipients []string, template string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, NewMessage(recipients, template, data))
	return nil
}

// Sent returns a copy of the recorded messages.
func (c *MemoryClient) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.sent...)
}

// SentWithTemplate returns recorded messages using the given template.
func (c *MemoryClient) SentWithTemplate(template string) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Message
	for _, msg := range c.sent {
		if msg.Template == template {
			out = append(out, msg)
		}
	}
	return out
}

var _ Client = (*MemoryClient)(nil)
