// Package vertex talks to the OpenAI-compatible chat completions endpoint
// that Vertex AI exposes for partner models.
package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/extractor"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const (
	CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	endpointTemplate  = "https://%s-aiplatform.googleapis.com/v1beta1/projects/%s/locations/%s/endpoints/openapi"
	completionsPath   = "/chat/completions"
	maxErrorBodyBytes = 1024
	defaultTimeout    = 60 * time.Second
)

type Config struct {
	ProjectID string
	Location  string
	// Endpoint replaces the URL derived from ProjectID and Location.
	Endpoint string
	Timeout  time.Duration
}

func (c Config) BaseURL() string {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	return fmt.Sprintf(endpointTemplate, c.Location, c.ProjectID, c.Location)
}

// NewHTTPClient builds an HTTP client that signs every request with an
// access token for the service account in credentialsFile and refreshes it
// when it expires. An empty path falls back to application default
// credentials.
func NewHTTPClient(ctx context.Context, credentialsFile string) (*http.Client, error) {
	opts := []option.ClientOption{option.WithScopes(CloudPlatformScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorized http client: %w", err)
	}
	return client, nil
}

// Client implements extractor.ChatCompleter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

func NewClient(httpClient *http.Client, cfg Config) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("vertex: http client is required")
	}
	if cfg.Endpoint == "" && (cfg.ProjectID == "" || cfg.Location == "") {
		return nil, errors.New("vertex: project id and location are required when no endpoint is set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL(),
		timeout:    cfg.Timeout,
	}, nil
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

func (c *Client) Complete(ctx context.Context, req *extractor.ChatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", entity.ErrBackendUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	logrus.WithFields(logrus.Fields{
		"model":    req.Model,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("chat completion finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", fmt.Errorf("%w: status %d: %s", entity.ErrBackendUnavailable, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode completion envelope: %w", entity.ErrBackendUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", entity.ErrBackendUnavailable)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
