package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"payment-service/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

// Producer is the part of *kafka.Producer used here.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Flush(timeoutMs int) int
	Close()
}

// KafkaPublisher publishes receipts to a topic. Produce only enqueues into
// librdkafka's local buffer; delivery reports are logged in the background.
type KafkaPublisher struct {
	producer Producer
	topic    string
	done     chan struct{}
	once     sync.Once
}

func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	p := &KafkaPublisher{producer: producer, topic: topic, done: make(chan struct{})}
	go p.watchDeliveries()
	log.WithField("topic", topic).Info("Kafka receipt publisher ready")
	return p
}

func (p *KafkaPublisher) Dispatch(_ context.Context, receipt domain.Receipt) error {
	value, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(receipt.TransactionID),
		Value:          value,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce receipt: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) watchDeliveries() {
	defer close(p.done)
	for ev := range p.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				log.WithError(e.TopicPartition.Error).WithField("transaction_id", string(e.Key)).Error("Receipt delivery to Kafka failed")
				continue
			}
			log.WithFields(log.Fields{
				"transaction_id": string(e.Key),
				"partition":      e.TopicPartition.Partition,
				"offset":         e.TopicPartition.Offset,
			}).Debug("Receipt delivered to Kafka")
		case kafka.Error:
			log.WithError(e).Error("Kafka producer error")
		}
	}
}

// Close flushes outstanding messages until ctx expires, then closes the
// producer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		timeout := 5 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if left := p.producer.Flush(int(timeout.Milliseconds())); left > 0 {
			err = fmt.Errorf("%d receipts were not delivered before shutdown", left)
		}
		p.producer.Close()
		<-p.done
	})
	return err
}
