// gearshare-notifier drains the notification topic and hands each message to
// the delivery sink. The API process only publishes; actual delivery is this
// worker's job, so a burst of rental activity never blocks on a mail gateway.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"

	"gearshare/internal/infra/broker/kafka"
	"gearshare/internal/infra/config"
	"gearshare/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "gearshare-notifier", nil, &deliveryHandler{logger: logger}, logger)
	if err != nil {
		logger.Error("consumer group setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("consumer close failed", "error", err)
		}
	}()

	logger.Info("notification worker started", "topic", cfg.NotifyTopic, "brokers", cfg.KafkaBrokers)
	if err := consumer.Run(ctx, []string{cfg.NotifyTopic}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notification worker stopped")
}

// deliveryHandler renders a notification payload and delivers it. Delivery is
// a structured log line here; swapping in a mail or push gateway only touches
// this type.
type deliveryHandler struct {
	logger *slog.Logger
}

type notification struct {
	ID       string         `json:"id"`
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
	SentAt   string         `json:"sent_at"`
}

func (h *deliveryHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var n notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		// poison message; log and move on rather than stalling the partition
		h.logger.Warn("undecodable notification dropped", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	h.logger.Info("notification delivered",
		"notification_id", n.ID,
		"recipient", n.To,
		"template", n.Template,
		"data", n.Data,
	)
	return nil
}
