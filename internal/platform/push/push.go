// Package push delivers best-effort real-time notifications. Delivery is
// fire-and-forget: a failed publish is logged and never surfaces to the
// caller.
package push

import "context"

// Payload is what subscribers receive on a push subject.
type Payload struct {
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Link        string `json:"link,omitempty"`
	QuotationID int64  `json:"quotationId,omitempty"`
}

type Notifier interface {
	// BroadcastAdmin publishes to every connected admin.
	BroadcastAdmin(ctx context.Context, p Payload)
	// NotifyUser publishes to a single user's subject.
	NotifyUser(ctx context.Context, userID string, p Payload)
	Close()
}
