package vertex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "derived from project and location",
			cfg:  Config{ProjectID: "llama-4-scout", Location: "us-east5"},
			want: "https://us-east5-aiplatform.googleapis.com/v1beta1/projects/llama-4-scout/locations/us-east5/endpoints/openapi",
		},
		{
			name: "explicit endpoint wins",
			cfg:  Config{ProjectID: "p", Location: "l", Endpoint: "http://localhost:9000/v1/"},
			want: "http://localhost:9000/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.BaseURL())
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil, Config{Endpoint: "http://x"})
	assert.Error(t, err)

	_, err = NewClient(http.DefaultClient, Config{ProjectID: "p"})
	assert.Error(t, err)

	c, err := NewClient(http.DefaultClient, Config{ProjectID: "p", Location: "l"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, c.timeout)
}

func TestComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[{"message":{"role":"assistant","content":"  {\"name\":\"Drill\"}\n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), Config{Endpoint: srv.URL + "/v1"})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), &extractor.ChatRequest{
		Model:          "meta/llama",
		Messages:       []extractor.Message{{Role: "user", Content: []extractor.ContentPart{{Type: "text", Text: "hi"}}}},
		TopP:           1,
		ResponseFormat: &extractor.ResponseFormat{Type: "json_object"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Drill"}`, text)
	assert.Equal(t, "meta/llama", got["model"])
	assert.Equal(t, 0.0, got["temperature"])
}

func TestCompleteFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
			},
		},
		{
			name: "garbage envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>bad gateway</html>`))
			},
		},
		{
			name: "too slow",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := NewClient(srv.Client(), Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), &extractor.ChatRequest{Model: "m"})
			require.ErrorIs(t, err, entity.ErrBackendUnavailable)
		})
	}
}

func TestCompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(http.DefaultClient, Config{Endpoint: url})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), &extractor.ChatRequest{Model: "m"})
	require.ErrorIs(t, err, entity.ErrBackendUnavailable)
}
