package extractor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/sirupsen/logrus"
)

const DefaultPrompt = `You are given the image of an item.
Your task is to extract information about the item and return a JSON object with the following fields:
- name: The name of the item.
- type: The general type of the item.
- serial_number: The serial number of the item. (optional, can be empty)`

const (
	roleUser           = "user"
	partText           = "text"
	partImageURL       = "image_url"
	responseJSONObject = "json_object"
	jpegDataURIPrefix  = "data:image/jpeg;base64,"
)

type Config struct {
	Model  string
	Prompt string
}

// Client turns an encoded composite image into a validated item record.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	completer ChatCompleter
	model     string
	prompt    string
}

func NewClient(completer ChatCompleter, cfg Config) (*Client, error) {
	if completer == nil {
		return nil, errors.New("extractor: chat completer is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("extractor: model id is required")
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}

	return &Client{
		completer: completer,
		model:     cfg.Model,
		prompt:    cfg.Prompt,
	}, nil
}

// Extract sends a single request with greedy decoding and parses the reply.
// There are no retries.
func (c *Client) Extract(ctx context.Context, payload []byte) (*entity.ItemRecord, error) {
	text, err := c.completer.Complete(ctx, c.BuildRequest(payload))
	if err != nil {
		if errors.Is(err, entity.ErrBackendUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrBackendUnavailable, err)
	}

	logrus.WithField("response", text).Debug("extraction backend replied")

	return ParseItemRecord(text)
}

func (c *Client) BuildRequest(payload []byte) *ChatRequest {
	return &ChatRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role: roleUser,
				Content: []ContentPart{
					{Type: partText, Text: c.prompt},
					{Type: partImageURL, ImageURL: &ImageURL{URL: DataURI(payload)}},
				},
			},
		},
		Temperature:    0,
		TopP:           1,
		ResponseFormat: &ResponseFormat{Type: responseJSONObject},
	}
}

func DataURI(jpeg []byte) string {
	return jpegDataURIPrefix + base64.StdEncoding.EncodeToString(jpeg)
}
