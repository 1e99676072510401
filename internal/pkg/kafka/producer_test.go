package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	payload := map[string]string{"name": "Drill", "type": "Tool"}

	msg, err := newMessage("evt-1", payload)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.False(t, msg.Time.IsZero())

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewMessageRejectsUnmarshalable(t *testing.T) {
	_, err := newMessage("k", make(chan int))
	assert.Error(t, err)
}

func TestNewProducerFallsBackToMock(t *testing.T) {
	p := NewProducer(nil, "item-analyzed")

	_, ok := p.(*mockProducer)
	require.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), "k", map[string]int{"a": 1}))
	assert.NoError(t, p.Close())
}
