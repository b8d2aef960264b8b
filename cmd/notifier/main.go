package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/naarimani/platform/internal/domain"
	"github.com/naarimani/platform/internal/infra"
)

// The notifier consumes platform events from Kafka and dispatches user
// notifications. Delivery channels plug in behind dispatch; today it logs
// the notification payloads.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("notifier failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.KafkaEnabled {
		return fmt.Errorf("notifier requires KAFKA_ENABLED=true")
	}

	topics := []string{"naarimani.wallet", "naarimani.game", "naarimani.redemption"}

	var wg sync.WaitGroup
	for _, topic := range topics {
		consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topic, "naarimani-notifier", true, logger)
		defer consumer.Close()

		wg.Add(1)
		go func(topic string, c *infra.KafkaConsumer) {
			defer wg.Done()
			consume(ctx, c, topic, logger)
		}(topic, consumer)
	}

	logger.Info("notifier started", "topics", topics)
	wg.Wait()
	return nil
}

// envelope is the message shape published by the outbox poller.
type envelope struct {
	EventID       string           `json:"event_id"`
	AggregateType string           `json:"aggregate_type"`
	AggregateID   string           `json:"aggregate_id"`
	EventType     domain.EventType `json:"event_type"`
	Payload       json.RawMessage  `json:"payload"`
}

func consume(ctx context.Context, c *infra.KafkaConsumer, topic string, logger *slog.Logger) {
	for {
		msg, err := c.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("fetch message", "topic", topic, "error", err)
			continue
		}

		var env envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			logger.Error("decode event", "topic", topic, "error", err)
		} else {
			dispatch(env, logger)
		}

		if err := c.Commit(ctx, msg); err != nil {
			logger.Error("commit message", "topic", topic, "error", err)
		}
	}
}

func dispatch(env envelope, logger *slog.Logger) {
	switch env.EventType {
	case domain.EventResultsDeclared:
		logger.Info("notify: results declared", "game_id", env.AggregateID, "payload", string(env.Payload))
	case domain.EventPredictionScored:
		logger.Info("notify: winnings credited", "game_id", env.AggregateID, "payload", string(env.Payload))
	case domain.EventRedemptionStatusChanged:
		logger.Info("notify: redemption updated", "redemption_id", env.AggregateID, "payload", string(env.Payload))
	case domain.EventGameEntered, domain.EventRedemptionRequested, domain.EventTransactionPosted:
		// No user-facing notification for these; keep an audit trace.
		logger.Debug("event consumed", "event_type", env.EventType, "event_id", env.EventID)
	default:
		logger.Warn("unknown event type", "event_type", env.EventType)
	}
}
