package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/cache"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	stageCompose = "compose"
	stageEncode  = "encode"
	stageExtract = "extract"
	stagePublish = "publish"
)

// Analyze runs compose, encode and extract in order. The first failing step
// ends the request; there is no partial result.
func (s *analyzeService) Analyze(ctx context.Context, images []entity.RawImage) (resp *entity.ItemResponse, err error) {
	if len(images) == 0 {
		return nil, entity.ErrEmptyInput
	}

	log := logrus.WithFields(logrus.Fields{
		"request_id": requestid.FromContext(ctx),
		"images":     len(images),
	})
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			log.WithError(err).Warn("item analysis failed")
		}
		s.metrics.ObserveAnalysis(outcome, len(images))
	}()

	start := time.Now()
	composite, err := s.compositor.Compose(ctx, images)
	s.metrics.ObserveStage(stageCompose, start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	payload, err := s.compositor.Encode(composite)
	s.metrics.ObserveStage(stageEncode, start)
	if err != nil {
		return nil, err
	}

	log = log.WithFields(logrus.Fields{
		"width":         composite.Bounds().Dx(),
		"height":        composite.Bounds().Dy(),
		"payload_bytes": payload.Len(),
	})

	record, cached, err := s.extract(ctx, log, payload.Bytes())
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"name":   record.Name,
		"type":   record.Type,
		"cached": cached,
	}).Info("item analyzed")

	s.publish(ctx, log, record, len(images), cached)

	return entity.NewItemResponse(record), nil
}

func (s *analyzeService) extract(ctx context.Context, log *logrus.Entry, payload []byte) (*entity.ItemRecord, bool, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(payload)
		record, hit, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.WithError(err).Warn("result cache lookup failed")
		case hit:
			s.metrics.ObserveCache(true)
			return record, true, nil
		default:
			s.metrics.ObserveCache(false)
		}
	}

	start := time.Now()
	record, err := s.extractor.Extract(ctx, payload)
	s.metrics.ObserveStage(stageExtract, start)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, record); err != nil {
			log.WithError(err).Warn("result cache store failed")
		}
	}
	return record, false, nil
}

// publish is best effort: the analysis already succeeded.
func (s *analyzeService) publish(ctx context.Context, log *logrus.Entry, record *entity.ItemRecord, images int, cached bool) {
	if s.publisher == nil {
		return
	}

	event := entity.ItemAnalyzedEvent{
		EventID:      uuid.New().String(),
		RequestID:    requestid.FromContext(ctx),
		Name:         record.Name,
		Type:         record.Type,
		SerialNumber: record.SerialNumber,
		ImageCount:   images,
		Cached:       cached,
		OccurredAt:   time.Now().UTC(),
	}

	start := time.Now()
	err := s.publisher.Publish(ctx, event.EventID, event)
	s.metrics.ObserveStage(stagePublish, start)
	if err != nil {
		log.WithError(err).Warn("failed to publish item analyzed event")
	}
}
