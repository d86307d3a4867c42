package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/eventfeed"
	"github.com/IBM/sarama"
)

// Producer struct for Kafka
type Producer struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewProducer initializes a Kafka producer
func NewProducer(broker string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer([]string{broker}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &Producer{producer: producer, brokers: []string{broker}}, nil
}

// SendMessage sends a keyed message to a Kafka topic. An empty key lets the
// partitioner pick the partition.
func (p *Producer) SendMessage(topic, key string, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(value),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// CreateTopic creates a Kafka topic if it does not exist
func (p *Producer) CreateTopic(topic string) error {
	config := sarama.NewConfig()
	config.Version = sarama.V2_1_0_0

	admin, err := sarama.NewClusterAdmin(p.brokers, config)
	if err != nil {
		return fmt.Errorf("error creating cluster admin: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopic(topic, &sarama.TopicDetail{
		NumPartitions:     1,
		ReplicationFactor: 1,
	}, false)
	if err != nil && !isTopicExists(err) {
		return fmt.Errorf("error creating topic %s: %w", topic, err)
	}
	return nil
}

// Close shuts down the producer
func (p *Producer) Close() {
	if err := p.producer.Close(); err != nil {
		log.Printf("Error closing Kafka producer: %v", err)
	}
}

func isTopicExists(err error) bool {
	var topicErr *sarama.TopicError
	return errors.As(err, &topicErr) && topicErr.Err == sarama.ErrTopicAlreadyExists
}

// EventPublisher writes gameplay events to a topic as JSON, keyed by player ID.
type EventPublisher struct {
	producer *Producer
	topic    string
}

func NewEventPublisher(producer *Producer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

// Publish implements eventfeed.Sink. The sync producer has its own timeouts,
// so ctx is only checked before sending.
func (e *EventPublisher) Publish(ctx context.Context, ev eventfeed.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}
	return e.producer.SendMessage(e.topic, ev.PlayerID, b)
}

// Consumer struct for Kafka
type Consumer struct {
	consumer sarama.Consumer
}

// NewConsumer initializes a Kafka consumer
func NewConsumer(broker string) (*Consumer, error) {
	config := sarama.NewConfig()
	consumer, err := sarama.NewConsumer([]string{broker}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	return &Consumer{consumer: consumer}, nil
}

// Relay consumes new messages from partition 0 of topic and hands each value
// to handle until ctx is cancelled.
func (c *Consumer) Relay(ctx context.Context, topic string, handle func(string)) error {
	partitionConsumer, err := c.consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("error starting partition consumer: %w", err)
	}
	defer partitionConsumer.Close()

	messages := partitionConsumer.Messages()
	errs := partitionConsumer.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			handle(string(msg.Value))
		case cerr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("Error consuming from topic %s: %v", topic, cerr)
		}
	}
}

// Close shuts down the consumer
func (c *Consumer) Close() {
	if err := c.consumer.Close(); err != nil {
		log.Printf("Error closing Kafka consumer: %v", err)
	}
}
