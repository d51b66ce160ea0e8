package di

import (
	"context"
	"fmt"
	"time"

	"CosmicClock/internal/domain/repository"
	"CosmicClock/internal/handler/api"
	mid "CosmicClock/internal/middleware"
	internalrepo "CosmicClock/internal/repository"
	"CosmicClock/internal/service/ratelimit"
	"CosmicClock/internal/services/patterns"
	"CosmicClock/internal/usecase"
	"CosmicClock/pkg/cache"
	pkgch "CosmicClock/pkg/clickhouse"
	"CosmicClock/pkg/config"
	xhttp "CosmicClock/pkg/http"
	pkgkafka "CosmicClock/pkg/kafka"
	applogger "CosmicClock/pkg/logger"
	"CosmicClock/pkg/metrics"
	"CosmicClock/pkg/postgres"
	"CosmicClock/pkg/server"
	xutil "CosmicClock/pkg/util"
)

const connectTimeout = 10 * time.Second

// ProvideLogger creates the application logger from the logger section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("service", "cosmic-clock"), applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects when ClickHouse backs the archive; otherwise nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.ArchiveType() != "clickhouse" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePostgresPool connects when Postgres backs the archive; otherwise nil.
func ProvidePostgresPool(cfg *config.Config) (*postgres.Pool, error) {
	if cfg.ArchiveType() != "postgres" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN,
		postgres.WithMaxConns(cfg.Postgres.MaxConns),
		postgres.WithMaxConnLifetime(cfg.Postgres.MaxConnLifetime),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	return pool, nil
}

// ProvideKafkaProducer creates the detection event producer for the kafka backend; otherwise nil.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != usecase.BackendKafka {
		return nil, nil
	}
	return newProducer(cfg)
}

func newProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideCache builds the forecast cache: in-process LRU, layered over Redis when enabled.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	size := cfg.Clock.Forecast.CacheSize
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(size),
			cache.WithMemoryDefaultTTL(cfg.Clock.ForecastInterval),
		), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx,
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.Timeout),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("forecast cache layered over redis",
		applogger.String("addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)))
	return cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(size),
		cache.WithLayeredL1TTL(cfg.Clock.ForecastInterval),
	), nil
}

// ProvidePatternArchive selects the archive store. Nil when no archive is configured.
func ProvidePatternArchive(cfg *config.Config, ch *pkgch.Client, pg *postgres.Pool, l *applogger.Logger) repository.PatternArchive {
	switch {
	case cfg.ArchiveType() == "postgres" && pg != nil:
		return internalrepo.NewPGPatternArchive(pg)
	case cfg.ArchiveType() == "clickhouse" && ch != nil:
		return internalrepo.NewCHPatternArchive(ch, cfg.ClickHouse.Table, l)
	default:
		return nil
	}
}

// ProvidePatternPublisher wraps the producer. Nil unless the backend is kafka.
func ProvidePatternPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.PatternPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePatternProcessor creates the export router.
func ProvidePatternProcessor(
	cfg *config.Config,
	pub repository.PatternPublisher,
	archive repository.PatternArchive,
	m repository.Metrics,
) *usecase.PatternProcessor {
	return usecase.NewPatternProcessor(pub, archive, m, cfg.Backend.Type)
}

// ProvidePipeline builds the throttle and retry buffer in front of the processor.
func ProvidePipeline(cfg *config.Config, proc *usecase.PatternProcessor, m repository.Metrics) *mid.RealtimePipeline {
	return mid.NewRealtimePipeline(proc, m,
		mid.WithThrottleWindow(cfg.Backend.ThrottleWindow),
		mid.WithBufferSize(cfg.Backend.BufferSize),
		mid.WithRetryBackoff(cfg.Backend.RetryMin, cfg.Backend.RetryMax),
	)
}

func ProvidePatternHistory(cfg *config.Config) *usecase.PatternHistory {
	return usecase.NewPatternHistory(cfg.History.Cap)
}

func ProvideDetector() *patterns.Detector {
	return patterns.NewDetector()
}

// ProvidePredictor forecasts the configured ids by default and reports
// exhausted searches to metrics.
func ProvidePredictor(cfg *config.Config, det *patterns.Detector, m repository.Metrics) (*patterns.Predictor, error) {
	ids := cfg.Clock.Forecast.IDs
	for _, id := range ids {
		if id == patterns.AllPatterns {
			continue
		}
		if _, ok := det.Catalog().Lookup(id); !ok {
			return nil, fmt.Errorf("clock.forecast.ids: unknown pattern id %q", id)
		}
	}
	return patterns.NewPredictor(
		patterns.WithDefaultForecast(ids...),
		patterns.WithExhaustionHook(m.RecordSearchExhausted),
	), nil
}

// ProvideForecastService puts the predictor behind the cache. Entries live one forecast interval.
func ProvideForecastService(
	cfg *config.Config,
	p *patterns.Predictor,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ForecastService {
	return usecase.NewForecastService(p, c, m, cfg.Clock.ForecastInterval, l)
}

func ProvideHub(l *applogger.Logger) *api.Hub {
	return api.NewHub(l)
}

func forecastOptions(cfg *config.Config) patterns.PredictOptions {
	f := cfg.Clock.Forecast
	return patterns.PredictOptions{
		Horizon:      f.Horizon,
		Cap:          f.Cap,
		PerPredicate: f.PerPredicate,
		CalendarDays: f.CalendarDays,
		MaxSteps:     f.MaxSteps,
		Only:         f.IDs,
	}
}

// ProvideClockSampler builds the detection loop in the configured timezone.
func ProvideClockSampler(
	cfg *config.Config,
	det *patterns.Detector,
	fs *usecase.ForecastService,
	history *usecase.PatternHistory,
	pipe *mid.RealtimePipeline,
	hub *api.Hub,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.ClockSampler, error) {
	loc, err := xutil.LoadLocation(cfg.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("clock timezone: %w", err)
	}
	return usecase.NewClockSampler(det, fs, history, pipe, hub, m, usecase.SamplerConfig{
		Location:         loc,
		SampleInterval:   cfg.Clock.SampleInterval,
		ForecastInterval: cfg.Clock.ForecastInterval,
		Forecast:         forecastOptions(cfg),
	}, l), nil
}

// ProvidePatternsHandler creates the HTTP handler. The live source is the sampler.
func ProvidePatternsHandler(
	cfg *config.Config,
	l *applogger.Logger,
	det *patterns.Detector,
	fs *usecase.ForecastService,
	history *usecase.PatternHistory,
	archive repository.PatternArchive,
	sampler *usecase.ClockSampler,
	hub *api.Hub,
) *api.PatternsHandler {
	return api.NewPatternsHandler(l, det, det.Catalog(), fs, history, archive, sampler, hub,
		ratelimit.New(),
		api.RateLimit{Capacity: cfg.RateLimit.Capacity, RefillPerSec: cfg.RateLimit.RefillPerSec},
	)
}

// ProvideHTTPServer builds the echo server with the pattern routes.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.PatternsHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithMetrics(metricsPath, nil, nil),
	)
}

// ProvideKafkaConsumer creates the archive sink consumer when enabled; otherwise nil.
func ProvideKafkaConsumer(
	cfg *config.Config,
	l *applogger.Logger,
	archive repository.PatternArchive,
	m repository.Metrics,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	if archive == nil {
		return nil, fmt.Errorf("kafka consumer: no archive to sink into")
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook(),
		pkgkafka.LatencyHook(func(topic string, d time.Duration, err error) {
			m.RecordLatency("consume", d.Seconds())
			if err != nil {
				l.Warn("pattern event attempt failed",
					applogger.String("topic", topic),
					applogger.Duration("took", d),
					applogger.Error(err))
			}
		}),
	))
	consumer.RegisterHandler(usecase.NewKafkaPatternsHandler(cfg.Kafka.Topic, archive, m))
	return consumer, nil
}

// ProvideResources collects owned clients and, when enabled, attaches the
// Kafka log collector to l.
func ProvideResources(
	cfg *config.Config,
	l *applogger.Logger,
	ch *pkgch.Client,
	pg *postgres.Pool,
	c cache.Service,
) (server.Resources, error) {
	res := server.Resources{ClickHouse: ch, Postgres: pg, Cache: c}
	if !cfg.Logger.Collector.Enabled {
		return res, nil
	}
	producer, err := newProducer(cfg)
	if err != nil {
		return res, fmt.Errorf("log collector: %w", err)
	}
	res.LogProducer = producer
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   cfg.Logger.Collector.FlushInterval,
		CountThreshold: cfg.Logger.Collector.CountThreshold,
		Topic:          cfg.Logger.Collector.Topic,
		Publisher:      producer,
		OnPublishError: func(err error) {
			l.Warn("log collector publish failed", applogger.Error(err))
		},
	})
	return res, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	sampler *usecase.ClockSampler,
	pipe *mid.RealtimePipeline,
	proc *usecase.PatternProcessor,
	archive repository.PatternArchive,
	consumer *pkgkafka.Consumer,
	srv *xhttp.Server,
	res server.Resources,
) *server.App {
	return server.New(cfg, l, sampler, pipe, proc, archive, consumer, srv, res)
}
