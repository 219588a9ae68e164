package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/tramio/tramio/pkg/assignment"
	"github.com/tramio/tramio/pkg/automation"
	"github.com/tramio/tramio/pkg/cmd"
	"github.com/tramio/tramio/pkg/engine"
	"github.com/tramio/tramio/pkg/log"
	"github.com/tramio/tramio/pkg/receivers/queue"
	"github.com/tramio/tramio/pkg/scheduler"
	trc "github.com/tramio/tramio/pkg/tracer"
)

const defaultPollInterval = 30 * time.Second

func main() {
	command := &cli.Command{
		Name:                  "tramio-scheduler",
		Usage:                 "Start processes from schedules and the inbound queue",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scheduler-id",
				Aliases: []string{"id"},
				Usage:   "Custom scheduler ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("SCHEDULER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker addresses",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "How often to look for due schedules",
				Value:   defaultPollInterval,
				Sources: cli.EnvVars("POLL_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis address for the inbound queue (disabled when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password for the inbound queue",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			tracerProvider, err := trc.InitTracer(ctx, "tramio-scheduler")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}
			defer func() {
				if err := tracerProvider.Shutdown(ctx); err != nil {
					slog.Error("Failed to shutdown tracer provider", "error", err)
				}
			}()

			schedulerID := command.String("scheduler-id")
			if schedulerID == "" {
				schedulerID = fmt.Sprintf("scheduler-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("tramio-scheduler").With("scheduler_id", schedulerID)

			logger.Info("Initializing Tramio Scheduler", "scheduler_id", schedulerID)

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(
				command.String("event-bus"),
				command.String("kafka-brokers"),
				"tramio-scheduler",
				logger,
			)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			resolver := assignment.NewResolver(persistence, logger)
			runner := automation.NewRunner(cmd.NewStepRegistry(), logger)
			eng := engine.New(persistence, resolver, runner, eventBus, logger)

			poller := scheduler.NewPoller(persistence, eng, command.Duration("poll-interval"), logger)

			var receiver *queue.Receiver

			if addr := command.String("redis-url"); addr != "" {
				receiver = queue.NewReceiver(queue.Config{
					Addr:     addr,
					Password: command.String("redis-password"),
					Consumer: schedulerID,
				}, eng, logger)
			}

			service := NewScheduler(schedulerID, persistence, poller, receiver, logger)
			service.Start(ctx)

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
