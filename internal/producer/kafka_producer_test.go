package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"payment-service/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	mu         sync.Mutex
	messages   []*kafka.Message
	events     chan kafka.Event
	produceErr error
	pending    int
	closed     bool
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{events: make(chan kafka.Event, 10)}
}

func (f *fakeProducer) Produce(msg *kafka.Message, _ chan kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.produceErr != nil {
		return f.produceErr
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeProducer) Events() chan kafka.Event { return f.events }

func (f *fakeProducer) Flush(int) int { return f.pending }

func (f *fakeProducer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	close(f.events)
}

func TestDispatchPublishesReceipt(t *testing.T) {
	fake := newFakeProducer()
	pub := NewKafkaPublisher(fake, "successful_payments")

	receipt := domain.Receipt{TransactionID: "TX1", PayerEmail: "jane@example.com", Amount: "150.00", Currency: "USD"}
	require.NoError(t, pub.Dispatch(context.Background(), receipt))
	require.NoError(t, pub.Close(context.Background()))

	require.Len(t, fake.messages, 1)
	msg := fake.messages[0]
	assert.Equal(t, "successful_payments", *msg.TopicPartition.Topic)
	assert.Equal(t, []byte("TX1"), msg.Key)

	var got domain.Receipt
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, receipt, got)
	assert.True(t, fake.closed)
}

func TestDispatchProduceError(t *testing.T) {
	fake := newFakeProducer()
	fake.produceErr = kafka.NewError(kafka.ErrQueueFull, "queue full", false)
	pub := NewKafkaPublisher(fake, "successful_payments")
	defer pub.Close(context.Background())

	err := pub.Dispatch(context.Background(), domain.Receipt{TransactionID: "TX1"})
	assert.ErrorContains(t, err, "failed to produce receipt")
}

func TestDeliveryFailureIsLogged(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	fake := newFakeProducer()
	pub := NewKafkaPublisher(fake, "successful_payments")

	topic := "successful_payments"
	fake.events <- &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Error: errors.New("broker unreachable")},
		Key:            []byte("TX9"),
	}
	require.NoError(t, pub.Close(context.Background()))

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.ErrorLevel && entry.Data["transaction_id"] == "TX9" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCloseReportsUndelivered(t *testing.T) {
	fake := newFakeProducer()
	fake.pending = 2
	pub := NewKafkaPublisher(fake, "successful_payments")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorContains(t, pub.Close(ctx), "2 receipts were not delivered")
	assert.NoError(t, pub.Close(ctx))
}
