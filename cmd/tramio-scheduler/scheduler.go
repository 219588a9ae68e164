// Package main provides the Tramio scheduler service, which starts processes
// from due schedules and from the inbound queue.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tramio/tramio/pkg/persistence"
	"github.com/tramio/tramio/pkg/receivers/queue"
	"github.com/tramio/tramio/pkg/scheduler"
)

type Scheduler struct {
	id          string
	persistence persistence.Persistence
	poller      *scheduler.Poller
	receiver    *queue.Receiver
	logger      *slog.Logger
}

func NewScheduler(
	id string,
	persistence persistence.Persistence,
	poller *scheduler.Poller,
	receiver *queue.Receiver,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		id:          id,
		persistence: persistence,
		poller:      poller,
		receiver:    receiver,
		logger:      logger.With("module", "scheduler"),
	}
}

// Start runs the poller and queue receiver until a shutdown signal arrives.
func (s *Scheduler) Start(ctx context.Context) {
	sCtx, cancel := context.WithCancel(ctx)

	s.logger.Info("Starting scheduler")

	s.handleSignals(cancel)

	s.poller.Start(sCtx)

	if s.receiver != nil {
		err := s.receiver.Start(sCtx)
		if err != nil {
			s.logger.Error("Failed to start queue receiver", "error", err)
			cancel()
		}
	}

	<-sCtx.Done()
	s.logger.Info("Scheduler context cancelled, stopping...")
}

func (s *Scheduler) handleSignals(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		s.logger.Info("Received signal", "signal", sig)
		s.stop(cancel)
		os.Exit(0)
	}()
}

func (s *Scheduler) stop(cancel context.CancelFunc) {
	s.logger.Info("Shutting down gracefully...")

	s.poller.Stop()

	if s.receiver != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()

		err := s.receiver.Stop(stopCtx)
		if err != nil {
			s.logger.Error("Failed to stop queue receiver", "error", err)
		}
	}

	cancel()
}
