package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := NewMessage([]string{"review-board@example.com"}, TemplateEscalation, map[string]any{
		"caseId": "case-1",
		"score":  float64(4),
	})
	if msg.Version != 1 {
		t.Fatalf("expected version 1, got %d", msg.Version)
	}
	if _, err := time.Parse(time.RFC3339, msg.EnqueuedAt); err != nil {
		t.Fatalf("EnqueuedAt must be RFC3339: %v", err)
	}

	raw, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	got, err := DecodeMessage(raw)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Template != TemplateEscalation || got.Data["caseId"] != "case-1" || got.Data["score"] != float64(4) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestMemoryClientRecordsByTemplate(t *testing.T) {
	client := NewMemoryClient()
	ctx := context.Background()

	if err := client.Notify(ctx, []string{"a@example.com"}, TemplateInitial, map[string]any{"caseId": "c1"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := client.Notify(ctx, []string{"a@example.com"}, TemplateReminder, map[string]any{"caseId": "c1"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if got := len(client.Sent()); got != 2 {
		t.Fatalf("expected 2 messages, got %d", got)
	}
	if got := len(client.SentWithTemplate(TemplateReminder)); got != 1 {
		t.Fatalf("expected 1 reminder, got %d", got)
	}
}

func TestMemoryClientFailWith(t *testing.T) {
	client := NewMemoryClient()
	wantErr := errors.New("queue unavailable")
	client.FailWith(wantErr)

	err := client.Notify(context.Background(), nil, TemplateInitial, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if got := len(client.Sent()); got != 0 {
		t.Fatalf("failed notify must not record, got %d", got)
	}
}
