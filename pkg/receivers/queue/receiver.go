// Package queue consumes start-process requests from a Redis stream so
// external systems can open processes without going through the HTTP API.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/tramio/tramio/pkg/models"
)

const (
	defaultStream   = "tramio:process:start"
	defaultGroup    = "tramio-receivers"
	readBlock       = 1 * time.Second
	batchSize       = 10
	connectTimeout  = 5 * time.Second
	errorBackoff    = 1 * time.Second
	payloadFieldKey = "payload"
)

// StartRequest is the decoded message shape.
type StartRequest struct {
	WorkflowID     string `json:"workflow_id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
}

// Starter is the slice of the engine the receiver needs.
type Starter interface {
	StartProcess(ctx context.Context, workflowID, name, organizationID, userID string) (*models.ProcessInstance, error)
}

// Config holds the Redis connection and stream settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

// Receiver reads start requests from a consumer group. Messages are acked
// only after the process started, so a crashed receiver leaves them pending
// for redelivery: delivery is at least once.
type Receiver struct {
	config  Config
	starter Starter
	logger  *slog.Logger

	client redis.UniversalClient
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewReceiver(config Config, starter Starter, logger *slog.Logger) *Receiver {
	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}

	if config.Stream == "" {
		config.Stream = defaultStream
	}

	if config.Group == "" {
		config.Group = defaultGroup
	}

	if config.Consumer == "" {
		config.Consumer = "consumer-1"
	}

	return &Receiver{
		config:  config,
		starter: starter,
		stopCh:  make(chan struct{}),
		logger: logger.With(
			"module", "queue_receiver",
			"stream", config.Stream,
			"group", config.Group,
		),
	}
}

// Start connects, ensures the consumer group exists and launches the consume
// loop.
func (r *Receiver) Start(ctx context.Context) error {
	r.client = redis.NewClient(&redis.Options{
		Addr:     r.config.Addr,
		Password: r.config.Password,
		DB:       r.config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	err := r.client.Ping(pingCtx).Err()
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	err = r.client.XGroupCreateMkStream(ctx, r.config.Stream, r.config.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.InfoContext(ctx, "queue receiver started", "addr", r.config.Addr)

	r.wg.Add(1)

	go r.consume(ctx)

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		default:
			err := r.readBatch(ctx)
			if err != nil {
				r.logger.ErrorContext(ctx, "failed to read from stream", "error", err)
				time.Sleep(errorBackoff)
			}
		}
	}
}

func (r *Receiver) readBatch(ctx context.Context) error {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.config.Group,
		Consumer: r.config.Consumer,
		Streams:  []string{r.config.Stream, ">"},
		Count:    batchSize,
		Block:    readBlock,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			r.handle(ctx, msg)
		}
	}

	return nil
}

// handle starts the requested process and acks the message. A failed start
// leaves the message pending so another consumer can retry it.
func (r *Receiver) handle(ctx context.Context, msg redis.XMessage) {
	request, err := decodeRequest(msg)
	if err != nil {
		r.logger.ErrorContext(ctx, "discarding malformed start request",
			"message_id", msg.ID, "error", err)
		// malformed messages never become valid, ack them away
		r.ack(ctx, msg.ID)

		return
	}

	_, err = r.starter.StartProcess(ctx, request.WorkflowID, request.Name, request.OrganizationID, request.UserID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to start process from queue",
			"message_id", msg.ID, "workflow_id", request.WorkflowID, "error", err)

		return
	}

	r.ack(ctx, msg.ID)
}

func (r *Receiver) ack(ctx context.Context, messageID string) {
	err := r.client.XAck(ctx, r.config.Stream, r.config.Group, messageID).Err()
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to ack message", "message_id", messageID, "error", err)
	}
}

func decodeRequest(msg redis.XMessage) (*StartRequest, error) {
	payload, ok := msg.Values[payloadFieldKey].(string)
	if !ok {
		return nil, errors.New("message has no payload field")
	}

	var request StartRequest

	err := json.Unmarshal([]byte(payload), &request)
	if err != nil {
		return nil, fmt.Errorf("failed to decode start request: %w", err)
	}

	if request.WorkflowID == "" || request.OrganizationID == "" {
		return nil, errors.New("start request requires workflow_id and organization_id")
	}

	return &request, nil
}

// Stop drains the consume loop and closes the connection.
func (r *Receiver) Stop(ctx context.Context) error {
	close(r.stopCh)
	r.wg.Wait()

	if r.client != nil {
		err := r.client.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close redis client", "error", err)
		}
	}

	return nil
}
