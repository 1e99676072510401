package extractor

import "context"

// ChatCompleter is the multimodal backend: it takes one chat request and
// returns the text content of the first choice.
type ChatCompleter interface {
	Complete(ctx context.Context, req *ChatRequest) (string, error)
}

// ChatRequest follows the OpenAI chat completions wire format.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart is either a text part or an image_url part.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}
