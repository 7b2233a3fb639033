// Package kafka builds the sarama clients used for activity events.
package kafka

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/illegalcall/tracys-match/internal/config"
)

const clientID = "tracys-match"

// Startup probing; vars so tests can shorten them.
var (
	maxRetries = 10
	retryDelay = 3 * time.Second
)

// brokerList splits KAFKA_BROKER on commas.
func brokerList(broker string) []string {
	var brokers []string
	for _, b := range strings.Split(broker, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func newConfig() *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = clientID
	return c
}

// waitForKafka blocks until a metadata request succeeds, so the API and the
// worker can start alongside the broker.
func waitForKafka(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	probe := newConfig()
	probe.Net.DialTimeout = time.Second
	probe.Metadata.Retry.Max = 0

	for attempt := 1; attempt <= maxRetries; attempt++ {
		client, err := sarama.NewClient(brokers, probe)
		if err == nil {
			client.Close()
			return nil
		}
		slog.Info("Waiting for Kafka", "brokers", brokers, "attempt", attempt, "error", err)
		time.Sleep(retryDelay)
	}
	return fmt.Errorf("kafka not available after %d attempts", maxRetries)
}

// NewProducer returns a synchronous producer for activity events. Events are
// keyed by account id, so the hash partitioner keeps one account's events in
// order.
func NewProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	brokers := brokerList(cfg.Broker)
	if err := waitForKafka(brokers); err != nil {
		return nil, err
	}

	c := newConfig()
	c.Producer.Return.Successes = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Partitioner = sarama.NewHashPartitioner
	c.Producer.Compression = sarama.CompressionSnappy
	c.Producer.Retry.Max = cfg.RetryMax
	c.Producer.Retry.Backoff = cfg.RetryBackoff

	producer, err := sarama.NewSyncProducer(brokers, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

// NewConsumer joins the activity worker group. A new group starts from the
// oldest retained event so no feed entry is skipped.
func NewConsumer(cfg config.KafkaConfig) (sarama.ConsumerGroup, error) {
	brokers := brokerList(cfg.Broker)
	if err := waitForKafka(brokers); err != nil {
		return nil, err
	}

	c := newConfig()
	c.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	c.Consumer.Offsets.Initial = sarama.OffsetOldest
	c.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, cfg.Group, c)
	if err != nil {
		return nil, fmt.Errorf("failed to join consumer group %q: %w", cfg.Group, err)
	}
	return group, nil
}
