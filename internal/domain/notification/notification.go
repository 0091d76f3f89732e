// Package notification defines the outbound notification model and the
// delivery sink port. Deliveries are best-effort: a failed notification
// never fails the workflow operation that produced it.
package notification

import (
	"context"
	"time"
)

// Notification is one message destined for a portal user.
type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Link        string            `json:"link,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Sink delivers notifications. Implementations include the redis queue
// producer used in-process and the HTTP client the worker drains into.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}
