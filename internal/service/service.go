package service

import (
	"context"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/compositor"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/metrics"
)

type AnalyzeService interface {
	Analyze(ctx context.Context, images []entity.RawImage) (*entity.ItemResponse, error)
}

type Extractor interface {
	Extract(ctx context.Context, payload []byte) (*entity.ItemRecord, error)
}

type ResultCache interface {
	Get(ctx context.Context, key string) (*entity.ItemRecord, bool, error)
	Set(ctx context.Context, key string, record *entity.ItemRecord) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, message interface{}) error
}

type analyzeService struct {
	compositor compositor.Compositor
	extractor  Extractor
	cache      ResultCache
	publisher  EventPublisher
	metrics    *metrics.Metrics
}

// NewAnalyzeService wires the pipeline. cache, publisher and m may be nil.
func NewAnalyzeService(
	comp compositor.Compositor,
	extractor Extractor,
	cache ResultCache,
	publisher EventPublisher,
	m *metrics.Metrics,
) AnalyzeService {
	return &analyzeService{
		compositor: comp,
		extractor:  extractor,
		cache:      cache,
		publisher:  publisher,
		metrics:    m,
	}
}
