package appServer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ds124wfegd/item-analyzer/config"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/cache"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/compositor"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/extractor"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/kafka"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/metrics"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/rabbitMQ"
	"github.com/ds124wfegd/item-analyzer/internal/pkg/vertex"
	"github.com/ds124wfegd/item-analyzer/internal/service"
	"github.com/ds124wfegd/item-analyzer/internal/transport"
	"github.com/sirupsen/logrus"
)

const cachePingTimeout = 3 * time.Second

// Dependencies holds everything built once at start and shared by all
// requests.
type Dependencies struct {
	Service      service.AnalyzeService
	Compositor   compositor.Compositor
	Metrics      *metrics.Metrics
	// HealthChecks covers the optional cache and event publisher.
	HealthChecks map[string]transport.HealthCheck

	closers []io.Closer
}

func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{
		Compositor:   NewCompositor(cfg.Analyze),
		Metrics:      metrics.New(),
		HealthChecks: make(map[string]transport.HealthCheck),
	}

	credentialsFile := cfg.Backend.CredentialsFile
	if credentialsFile == "" {
		credentialsFile = config.GetEnv("GOOGLE_APPLICATION_CREDENTIALS", "")
	}

	httpClient, err := vertex.NewHTTPClient(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}

	completer, err := vertex.NewClient(httpClient, vertex.Config{
		ProjectID: cfg.Backend.ProjectID,
		Location:  cfg.Backend.Location,
		Endpoint:  cfg.Backend.Endpoint,
		Timeout:   cfg.Backend.Timeout,
	})
	if err != nil {
		return nil, err
	}

	ext, err := extractor.NewClient(completer, extractor.Config{
		Model:  cfg.Backend.ModelID,
		Prompt: cfg.Backend.Prompt,
	})
	if err != nil {
		return nil, err
	}

	var resultCache service.ResultCache
	if cfg.Cache.Enabled {
		rc := newResultCache(ctx, cfg.Cache)
		deps.closers = append(deps.closers, rc)
		deps.HealthChecks["cache"] = rc.Ping
		resultCache = rc
	}

	var publisher service.EventPublisher
	p, err := newPublisher(cfg.Events)
	if err != nil {
		deps.Close()
		return nil, err
	}
	if p != nil {
		deps.closers = append(deps.closers, p)
		if check, ok := publisherHealthCheck(p); ok {
			deps.HealthChecks["events"] = check
		}
		publisher = p
	}

	deps.Service = service.NewAnalyzeService(deps.Compositor, ext, resultCache, publisher, deps.Metrics)
	return deps, nil
}

func NewCompositor(cfg config.AnalyzeConfig) compositor.Compositor {
	return compositor.NewCompositor(compositor.Options{
		MaxImages:          cfg.MaxImages,
		MaxImageBytes:      cfg.MaxImageBytes,
		MaxCompositePixels: cfg.MaxCompositePixels,
		JPEGQuality:        cfg.JPEGQuality,
		AutoOrient:         cfg.AutoOrient,
	})
}

// newResultCache does not fail start-up when redis is down; lookups will
// miss and the service keeps calling the backend.
func newResultCache(ctx context.Context, cfg config.CacheConfig) *cache.ResultCache {
	rc := cache.NewResultCache(cache.NewRedisClient(cache.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cachePingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}), cfg.TTL)

	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logrus.WithError(err).WithField("addr", cfg.Addr).Warn("result cache unreachable")
	}
	return rc
}

type eventPublisher interface {
	service.EventPublisher
	io.Closer
}

// newPublisher returns nil when events are disabled or the broker cannot be
// reached. An unknown driver is a configuration error.
func newPublisher(cfg config.EventsConfig) (eventPublisher, error) {
	switch cfg.Driver {
	case "", config.EventsNone:
		return nil, nil
	case config.EventsKafka:
		return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	case config.EventsRabbitMQ:
		rmq, err := rabbitMQ.NewRabbitMQ(rabbitMQ.RabbitMQConfig{
			URL:       cfg.RabbitMQ.URL,
			QueueName: cfg.RabbitMQ.Queue,
		})
		if err != nil {
			logrus.WithError(err).Warn("RabbitMQ unavailable, item events disabled")
			return nil, nil
		}
		return rmq, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// publisherHealthCheck exposes publishers that can probe their broker
// connection, such as RabbitMQ.
func publisherHealthCheck(p eventPublisher) (transport.HealthCheck, bool) {
	hc, ok := p.(interface{ HealthCheck() error })
	if !ok {
		return nil, false
	}
	return func(context.Context) error { return hc.HealthCheck() }, true
}

func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			logrus.WithError(err).Warn("failed to close dependency")
		}
	}
	d.closers = nil
}
