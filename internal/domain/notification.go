package domain

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationSignup    NotificationType = "signup"
	NotificationQuotation NotificationType = "quotation"
	NotificationCustom    NotificationType = "custom"
)

// Notification is the durable record of a noteworthy event. The real-time
// push that may accompany it is best-effort; this row is the delivery
// guarantee clients reconcile against.
type Notification struct {
	ID            int64            `json:"id,string"`
	UserID        string           `json:"userId"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Logo          string           `json:"logo,omitempty"`
	Name          string           `json:"name,omitempty"`
	QuotationName string           `json:"quotationName,omitempty"`
	QuotationID   string           `json:"quotationId,omitempty"`
	Email         string           `json:"email,omitempty"`
	Link          string           `json:"link,omitempty"`
	IsRead        bool             `json:"isRead"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type MarkReadRequest struct {
	ID int64 `json:"id,string"`
}

// BroadcastRequest is the admin's custom notification fan-out: one durable
// record plus one targeted push per listed user.
type BroadcastRequest struct {
	UserIDs     []string `json:"users"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	Image       string   `json:"image,omitempty"` // base64 data URI
}

func (r *BroadcastRequest) Validate() error {
	if len(r.UserIDs) == 0 {
		return fmt.Errorf("users list is required")
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
