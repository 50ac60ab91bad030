package push

import "context"

// NoopNotifier satisfies Notifier when no broker is configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) BroadcastAdmin(context.Context, Payload) {}

func (NoopNotifier) NotifyUser(context.Context, string, Payload) {}

func (NoopNotifier) Close() {}
