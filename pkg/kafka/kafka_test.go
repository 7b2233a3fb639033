package kafka

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/tracys-match/internal/config"
)

// unusedAddr returns an address nothing listens on.
func unusedAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestConstructorsGiveUpWhenKafkaIsDown(t *testing.T) {
	oldRetries, oldDelay := maxRetries, retryDelay
	maxRetries, retryDelay = 2, 10*time.Millisecond
	defer func() { maxRetries, retryDelay = oldRetries, oldDelay }()

	cfg := config.KafkaConfig{Broker: unusedAddr(t), Group: "test", RetryMax: 1, RetryBackoff: time.Millisecond}

	_, err := NewProducer(cfg)
	assert.ErrorContains(t, err, "kafka not available after 2 attempts")

	_, err = NewConsumer(cfg)
	assert.ErrorContains(t, err, "kafka not available after 2 attempts")
}

func TestBrokerList(t *testing.T) {
	assert.Equal(t, []string{"kafka:9092"}, brokerList("kafka:9092"))
	assert.Equal(t, []string{"a:9092", "b:9092"}, brokerList(" a:9092, ,b:9092 "))
	assert.Empty(t, brokerList(""))
}

func TestWaitForKafkaWithoutBrokers(t *testing.T) {
	assert.ErrorContains(t, waitForKafka(nil), "no kafka brokers configured")
}
