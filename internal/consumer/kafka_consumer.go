package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

const defaultPollInterval = 100 * time.Millisecond

type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) error
}

// Consumer is the part of *kafka.Consumer used here.
type Consumer interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	Poll(timeoutMs int) kafka.Event
	Close() error
}

// KafkaConsumer feeds receipt events from one topic to a handler. A message
// the handler rejects, or panics on, is logged and skipped.
type KafkaConsumer struct {
	consumer     Consumer
	topic        string
	handler      MessageHandler
	pollInterval time.Duration
}

type Option func(*KafkaConsumer)

// WithPollInterval sets how long each poll waits for an event.
func WithPollInterval(d time.Duration) Option {
	return func(c *KafkaConsumer) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func NewKafkaConsumer(consumer Consumer, topic string, handler MessageHandler, opts ...Option) (*KafkaConsumer, error) {
	if err := consumer.SubscribeTopics([]string{topic}, nil); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	c := &KafkaConsumer{
		consumer:     consumer,
		topic:        topic,
		handler:      handler,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	log.WithField("topic", topic).Info("Subscribed to Kafka topic")
	return c, nil
}

// Start polls until ctx is cancelled or Kafka reports a fatal error.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	timeoutMs := int(c.pollInterval / time.Millisecond)
	for ctx.Err() == nil {
		switch e := c.consumer.Poll(timeoutMs).(type) {
		case nil:
		case *kafka.Message:
			c.dispatch(ctx, e)
		case kafka.Error:
			entry := log.WithError(e).WithFields(log.Fields{"topic": c.topic, "code": e.Code().String()})
			if e.IsFatal() {
				entry.Error("Fatal Kafka error, consumer stopping")
				return e
			}
			entry.Warn("Kafka error")
		default:
			log.WithField("event", e.String()).Debug("Ignored Kafka event")
		}
	}
	log.WithField("topic", c.topic).Info("Kafka consumer stopping due to context cancellation")
	return ctx.Err()
}

func (c *KafkaConsumer) dispatch(ctx context.Context, msg *kafka.Message) {
	fields := log.Fields{"key": string(msg.Key)}
	if tp := msg.TopicPartition; tp.Topic != nil {
		fields["topic"] = *tp.Topic
		fields["partition"] = tp.Partition
		fields["offset"] = tp.Offset.String()
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(fields).WithField("panic", r).Error("Receipt handler panicked, message skipped")
		}
	}()
	if err := c.handler.HandleMessage(ctx, msg.Value); err != nil {
		log.WithError(err).WithFields(fields).Error("Failed to handle message")
	}
}

func (c *KafkaConsumer) Close() error {
	return c.consumer.Close()
}
