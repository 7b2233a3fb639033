// Package worker consumes activity events from Kafka and appends them to the
// per-account feeds in Redis.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/illegalcall/tracys-match/internal/activity"
	"github.com/illegalcall/tracys-match/internal/config"
	"github.com/illegalcall/tracys-match/internal/models"
)

// FeedWriter is where consumed events end up.
type FeedWriter interface {
	Append(ctx context.Context, ev models.ActivityEvent) error
}

// Worker implements sarama.ConsumerGroupHandler for the activity topic.
type Worker struct {
	cfg      *config.Config
	feed     FeedWriter
	consumer sarama.ConsumerGroup
	logger   *slog.Logger

	// ready is closed by the first Setup of a group session.
	ready     chan struct{}
	readyOnce sync.Once
}

func NewWorker(cfg *config.Config, feed FeedWriter, consumer sarama.ConsumerGroup) *Worker {
	return &Worker{
		cfg:      cfg,
		feed:     feed,
		consumer: consumer,
		logger:   slog.Default().With("component", "worker"),
		ready:    make(chan struct{}),
	}
}

// Start consumes until ctx is cancelled or the process gets SIGINT/SIGTERM,
// whether or not the group was joined yet.
func (w *Worker) Start(ctx context.Context) error {
	topics := []string{w.cfg.Kafka.Topic}
	w.logger.Info("Activity worker starting", "topics", topics, "group", w.cfg.Kafka.Group)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go w.logErrors()
	go w.consume(ctx, topics)

	select {
	case <-w.ready:
		w.logger.Info("Joined consumer group")
	case <-ctx.Done():
		w.logger.Info("Stopped before joining consumer group", "cause", context.Cause(ctx))
		return nil
	}

	<-ctx.Done()
	w.logger.Info("Activity worker stopped", "cause", context.Cause(ctx))
	return nil
}

// consume re-joins the group after every rebalance until ctx ends.
func (w *Worker) consume(ctx context.Context, topics []string) {
	for {
		if err := w.consumer.Consume(ctx, topics, w); err != nil {
			w.logger.Error("Consume returned an error", "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (w *Worker) logErrors() {
	for err := range w.consumer.Errors() {
		w.logger.Error("Kafka consumer error", "error", err)
	}
}

func (w *Worker) Setup(sarama.ConsumerGroupSession) error {
	w.readyOnce.Do(func() { close(w.ready) })
	return nil
}

func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error {
	w.logger.Debug("Consumer group session ended")
	return nil
}

// ConsumeClaim records every message of the claim. Messages are marked even
// when they could not be recorded, so a bad event never blocks the partition.
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := w.processEvent(session.Context(), msg); err != nil {
			w.logger.Error("Activity event not recorded", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

// processEvent decodes one message and appends it to the feed, retrying the
// write up to KAFKA_RETRY_MAX times.
func (w *Worker) processEvent(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ev, err := activity.Decode(msg.Value)
	if err != nil {
		w.logger.Warn("Malformed activity event", "error", err, "raw", string(msg.Value))
		return err
	}

	attempts := max(w.cfg.Kafka.RetryMax, 1)
	for attempt := 1; ; attempt++ {
		err = w.feed.Append(ctx, ev)
		if err == nil {
			w.logger.Debug("Activity recorded", "account", ev.AccountID, "kind", ev.Kind, "attempt", attempt)
			return nil
		}
		w.logger.Error("Feed write failed", "account", ev.AccountID, "attempt", attempt, "error", err)

		if attempt == attempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}
		select {
		case <-time.After(w.cfg.Kafka.RetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
