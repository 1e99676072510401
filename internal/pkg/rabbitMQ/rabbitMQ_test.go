package rabbitMQ

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	p, err := newPublishing("evt-42", map[string]string{"name": "Drill"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", p.ContentType)
	assert.Equal(t, "evt-42", p.MessageId)
	assert.Equal(t, amqp.Persistent, p.DeliveryMode)
	assert.False(t, p.Timestamp.IsZero())

	var body map[string]string
	require.NoError(t, json.Unmarshal(p.Body, &body))
	assert.Equal(t, "Drill", body["name"])
}

func TestHealthCheckWithoutConnection(t *testing.T) {
	r := &RabbitMQ{}
	assert.Error(t, r.HealthCheck())
	assert.NoError(t, r.Close())
}

func TestNewRabbitMQBadURL(t *testing.T) {
	_, err := NewRabbitMQ(RabbitMQConfig{URL: "not-a-url", QueueName: "items"})
	assert.Error(t, err)
}
