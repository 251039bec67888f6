package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gearshare/internal/app/policies"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// KafkaNotifier publishes user notifications to a single topic, keyed by
// recipient so a consumer sees one user's notifications in order.
type KafkaNotifier struct {
	Producer Producer
	Topic    string
}

type notification struct {
	ID       string    `json:"id"`
	To       string    `json:"to"`
	Template string    `json:"template"`
	Data     any       `json:"data,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

func (n *KafkaNotifier) Send(ctx context.Context, to string, template string, data any) error {
	payload, err := json.Marshal(notification{
		ID:       uuid.NewString(),
		To:       to,
		Template: template,
		Data:     data,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	headers := map[string]string{
		"content-type": "application/json",
		"template":     template,
	}
	return n.Producer.Publish(ctx, n.Topic, to, payload, headers)
}

var _ policies.Notifier = (*KafkaNotifier)(nil)
