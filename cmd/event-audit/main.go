// The event-audit binary tails the play and revenue topics and writes every
// event to the structured log. It gives operators a live window into the
// event stream without querying the database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gachabox/platform/internal/domain"
	"github.com/gachabox/platform/internal/infra"
	"github.com/joho/godotenv"
)

const consumerGroup = "event-audit"

var topics = []string{
	string(domain.EventGachaPlayed),
	string(domain.EventPrizeWon),
	string(domain.EventRevenueDistributed),
	string(domain.EventRevenueWithdrawn),
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("event audit failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.KafkaEnabled || cfg.KafkaBrokers == "" {
		return fmt.Errorf("kafka is disabled, nothing to tail")
	}

	var wg sync.WaitGroup
	for _, topic := range topics {
		consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topic, consumerGroup, cfg.KafkaEnabled, logger)
		defer consumer.Close()

		wg.Add(1)
		go func(topic string, c *infra.KafkaConsumer) {
			defer wg.Done()
			tail(ctx, topic, c, logger)
		}(topic, consumer)
	}
	logger.Info("event audit started", "topics", topics, "group", consumerGroup)

	<-ctx.Done()
	logger.Info("event audit shutting down")
	wg.Wait()
	return nil
}

func tail(ctx context.Context, topic string, c *infra.KafkaConsumer, logger *slog.Logger) {
	for {
		msg, err := c.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("read event", "topic", topic, "error", err)
			time.Sleep(time.Second)
			continue
		}
		logger.Info("event",
			"topic", topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"payload", string(msg.Value),
		)
	}
}
