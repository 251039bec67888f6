package policies

import "context"

// Notifier delivers a templated message to a recipient. Policies depend on
// this port; the Kafka-backed implementation lives in infra/notify.
type Notifier interface {
	Send(ctx context.Context, to string, template string, data any) error
}
