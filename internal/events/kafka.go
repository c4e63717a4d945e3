package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// NewWriter returns a Kafka writer for topic, or nil when addr or topic is empty.
// Topic creation failures are logged and do not prevent the writer from being used.
func NewWriter(addr, topic string, batch int) *kafka.Writer {
	if addr == "" || topic == "" {
		return nil
	}

	w := &kafka.Writer{
		Addr:      kafka.TCP(addr),
		Topic:     topic,
		BatchSize: batch,
	}

	if err := createTopic(w.Addr.String(), w.Topic); err != nil {
		log.Warnf("[events] failed to create Kafka topic %s: %v", topic, err)
	}

	return w
}

// NewPublisher wraps the writer, falling back to NopPublisher when it is nil.
func NewPublisher(w *kafka.Writer) Publisher {
	if w == nil {
		log.Warn("[events] kafka was not configured, activity events will not be published")
		return NopPublisher{}
	}
	return NewKafkaPublisher(w)
}

const topicSetupTimeout = 10 * time.Second

func createTopic(broker, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), topicSetupTimeout)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(topicSetupTimeout)); err != nil {
		return err
	}

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
