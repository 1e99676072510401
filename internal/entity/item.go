package entity

import (
	"io"
	"time"
)

// RawImage is one uploaded file part. Open is called exactly once per analysis.
type RawImage struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// ItemRecord is the structured answer returned by the extraction backend.
type ItemRecord struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	SerialNumber string `json:"serial_number"`
}

type ItemResponse struct {
	Name         string `json:"Name"`
	Type         string `json:"Type"`
	SerialNumber string `json:"SerialNumber"`
}

func NewItemResponse(record *ItemRecord) *ItemResponse {
	return &ItemResponse{
		Name:         record.Name,
		Type:         record.Type,
		SerialNumber: record.SerialNumber,
	}
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ItemAnalyzedEvent is published after every successful analysis.
type ItemAnalyzedEvent struct {
	EventID      string    `json:"event_id"`
	RequestID    string    `json:"request_id,omitempty"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	SerialNumber string    `json:"serial_number"`
	ImageCount   int       `json:"image_count"`
	Cached       bool      `json:"cached"`
	OccurredAt   time.Time `json:"occurred_at"`
}
