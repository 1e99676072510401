package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	Publish(ctx context.Context, key string, message interface{}) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer connects to the first reachable broker and makes sure the
// topic exists. When no broker answers it falls back to a producer that only
// logs, so the analyzer keeps serving without Kafka.
func NewProducer(brokers []string, topic string) Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logrus.Infof("Kafka producer configured for brokers: %v", brokers)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := dialAny(ctx, brokers)
	if err != nil {
		logrus.Warnf("Kafka connection failed: %v", err)
		logrus.Warn("Using mock producer instead")
		return &mockProducer{}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Infof("Could not create topic (might already exist): %v", err)
	} else {
		logrus.Infof("Created topic: %s", topic)
	}

	return &kafkaProducer{writer: writer, topic: topic}
}

func dialAny(ctx context.Context, brokers []string) (*kafka.Conn, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	var lastErr error
	for _, broker := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (p *kafkaProducer) Publish(ctx context.Context, key string, message interface{}) error {
	msg, err := newMessage(key, message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	logrus.Debugf("Message successfully sent to topic: %s", p.topic)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

func newMessage(key string, message interface{}) (kafka.Message, error) {
	value, err := json.Marshal(message)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}, nil
}

// mockProducer is used when Kafka is unreachable.
type mockProducer struct{}

func (m *mockProducer) Publish(_ context.Context, key string, message interface{}) error {
	logrus.WithField("key", key).Infof("MOCK: event %+v", message)
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
