package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tripdesk/crm-backend/pkg/logger"
)

const (
	SubjectAdmin      = "notify.admin"
	subjectUserPrefix = "notify.user."
)

// SubjectForUser returns the per-user push subject.
func SubjectForUser(userID string) string {
	return subjectUserPrefix + userID
}

type NATSNotifier struct {
	conn *nats.Conn
}

func NewNATSNotifier(url string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("tripdesk-push"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{conn: conn}, nil
}

func (n *NATSNotifier) BroadcastAdmin(ctx context.Context, p Payload) {
	n.publish(ctx, SubjectAdmin, p)
}

func (n *NATSNotifier) NotifyUser(ctx context.Context, userID string, p Payload) {
	if userID == "" {
		return
	}
	n.publish(ctx, SubjectForUser(userID), p)
}

func (n *NATSNotifier) publish(ctx context.Context, subject string, p Payload) {
	data, err := json.Marshal(p)
	if err != nil {
		logger.ErrorContext(ctx, "push: marshal payload", "subject", subject, "error", err)
		return
	}
	if err := n.conn.Publish(subject, data); err != nil {
		logger.WarnContext(ctx, "push: publish failed", "subject", subject, "error", err)
	}
}

func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Drain()
	}
}
