// Command company-events tails the company change topic and logs every event.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/coronavstech/companies/internal/company/config"
	"github.com/coronavstech/companies/internal/company/events"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	groupID := flag.String("group", "company-events-tail", "Kafka consumer group")
	flag.Parse()

	logger := zap.Must(zap.NewProduction())
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(cfg.KafkaBrokers, *groupID, cfg.Topic, logger)
	defer consumer.Close()

	consumer.RegisterHandler(func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_type", string(event.Type)),
			zap.Time("occurred_at", event.OccurredAt),
		}
		if event.Company != nil {
			fields = append(fields,
				zap.String("company_id", event.Company.ID.String()),
				zap.String("name", event.Company.Name),
				zap.String("status", string(event.Company.Status)),
			)
		}
		logger.Info("Company event", fields...)
		return nil
	})

	logger.Info("Tailing company events", zap.String("topic", cfg.Topic), zap.Strings("brokers", cfg.KafkaBrokers))
	if err := consumer.Run(ctx); err != nil {
		logger.Fatal("consumer failed", zap.Error(err))
	}
}
