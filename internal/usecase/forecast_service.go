package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"CosmicClock/internal/domain/models"
	drepo "CosmicClock/internal/domain/repository"
	domsvc "CosmicClock/internal/domain/service"
	"CosmicClock/internal/services/patterns"
	"CosmicClock/pkg/cache"
	applogger "CosmicClock/pkg/logger"
)

const forecastKeyPrefix = "forecast"

// ForecastService serves predictions through a cache. Predict is pure and
// the key covers every input, so a hit equals a recomputation once the
// decoded instants are put back in the sample's location.
type ForecastService struct {
	predictor domsvc.PatternPredictor
	cache     cache.Service
	metrics   drepo.Metrics
	ttl       time.Duration
	l         *applogger.Logger
}

var _ domsvc.Forecaster = (*ForecastService)(nil)

func NewForecastService(p domsvc.PatternPredictor, c cache.Service, m drepo.Metrics, ttl time.Duration, l *applogger.Logger) *ForecastService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &ForecastService{predictor: p, cache: c, metrics: m, ttl: ttl, l: l}
}

// Forecast returns cached predictions for (from, opts) or computes and stores them.
// Cache failures degrade to a direct computation.
func (s *ForecastService) Forecast(ctx context.Context, from models.TimeSample, opts patterns.PredictOptions) ([]models.PredictedOccurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.Normalize()
	key := ForecastKey(from, opts)

	if s.cache != nil {
		var cached []models.PredictedOccurrence
		err := s.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			s.metrics.RecordCacheResult(true)
			loc := from.Instant.Location()
			for i := range cached {
				cached[i].OccurringAt = cached[i].OccurringAt.In(loc)
			}
			return cached, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			s.metrics.RecordError("forecast_cache_get")
			s.l.Warn("forecast cache get failed", applogger.String("key", key), applogger.Error(err))
		}
		s.metrics.RecordCacheResult(false)
	}

	start := time.Now()
	out := s.predictor.Predict(from, opts)
	s.metrics.RecordLatency("predict", time.Since(start).Seconds())

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
			s.metrics.RecordError("forecast_cache_set")
			s.l.Warn("forecast cache set failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return out, nil
}

// ForecastKey builds the cache key of a normalized request.
func ForecastKey(from models.TimeSample, opts patterns.PredictOptions) string {
	only := "*"
	if len(opts.Only) > 0 {
		only = strings.Join(opts.Only, ",")
	}
	return cache.GenerateKeyWithParams(forecastKeyPrefix,
		from.Instant.Unix(),
		from.Instant.Location().String(),
		opts.Horizon,
		opts.Cap,
		opts.PerPredicate,
		opts.CalendarDays,
		opts.MaxSteps,
		only,
	)
}
