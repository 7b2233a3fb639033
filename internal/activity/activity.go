// Package activity records what an account did so dashboards can show a
// short "Recent activity" list. Events either go straight to the Redis feed
// or through Kafka to the worker, which writes the same feed.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/tracys-match/internal/models"
)

const (
	feedKeyPrefix = "activity:"

	// FeedLimit is how many events are kept per account.
	FeedLimit = 20
	feedTTL   = 30 * 24 * time.Hour
)

var ErrInvalidEvent = errors.New("invalid activity event")

// Publisher hands an event off for recording.
type Publisher interface {
	Publish(ctx context.Context, ev models.ActivityEvent) error
}

// Encode serializes an event for the wire.
func Encode(ev models.ActivityEvent) ([]byte, error) {
	if err := validate(ev); err != nil {
		return nil, err
	}
	return json.Marshal(ev)
}

// Decode parses an event read from the wire.
func Decode(data []byte) (models.ActivityEvent, error) {
	var ev models.ActivityEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return ev, validate(ev)
}

func validate(ev models.ActivityEvent) error {
	if ev.AccountID == "" || ev.Kind == "" {
		return fmt.Errorf("%w: account id and kind are required", ErrInvalidEvent)
	}
	return nil
}

// Feed is the per-account event list in Redis, newest first.
type Feed struct {
	rdb *redis.Client
}

func NewFeed(rdb *redis.Client) *Feed {
	return &Feed{rdb: rdb}
}

func feedKey(accountID string) string {
	return feedKeyPrefix + accountID
}

// Append adds ev to the front of the account's feed and trims it to FeedLimit.
func (f *Feed) Append(ctx context.Context, ev models.ActivityEvent) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}

	key := feedKey(ev.AccountID)
	_, err = f.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, FeedLimit-1)
		pipe.Expire(ctx, key, feedTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// Recent returns up to n events for the account, newest first. Entries that
// no longer decode are skipped.
func (f *Feed) Recent(ctx context.Context, accountID string, n int64) ([]models.ActivityEvent, error) {
	raw, err := f.rdb.LRange(ctx, feedKey(accountID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity: %w", err)
	}

	events := make([]models.ActivityEvent, 0, len(raw))
	for _, r := range raw {
		ev, err := Decode([]byte(r))
		if err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// FeedPublisher writes events straight to the feed.
type FeedPublisher struct {
	feed *Feed
}

func NewFeedPublisher(feed *Feed) *FeedPublisher {
	return &FeedPublisher{feed: feed}
}

func (p *FeedPublisher) Publish(ctx context.Context, ev models.ActivityEvent) error {
	return p.feed.Append(ctx, ev)
}

// KafkaPublisher sends events to a topic, keyed by account so one account's
// events stay ordered.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(_ context.Context, ev models.ActivityEvent) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.AccountID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("failed to publish activity: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
