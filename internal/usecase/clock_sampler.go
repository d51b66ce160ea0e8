package usecase

import (
	"context"
	"sync"
	"time"

	"CosmicClock/internal/domain/models"
	drepo "CosmicClock/internal/domain/repository"
	domsvc "CosmicClock/internal/domain/service"
	"CosmicClock/internal/services/patterns"
	applogger "CosmicClock/pkg/logger"
)

// Live message kinds.
const (
	KindTick     = "tick"
	KindForecast = "forecast"
)

// Broadcaster fans live updates out to subscribers.
type Broadcaster interface {
	Broadcast(kind string, payload interface{})
}

// EventSink accepts detection events for export.
type EventSink interface {
	Process(ctx context.Context, e *models.PatternEvent) error
}

// SamplerConfig holds sampler cadence and forecast options.
type SamplerConfig struct {
	Location         *time.Location
	SampleInterval   time.Duration
	ForecastInterval time.Duration
	Forecast         patterns.PredictOptions
}

// ClockSampler owns the detection loop: one sample per SampleInterval and a
// forecast refresh per ForecastInterval.
type ClockSampler struct {
	detector domsvc.PatternDetector
	forecast domsvc.Forecaster
	history  *PatternHistory
	sink     EventSink
	hub      Broadcaster
	metrics  drepo.Metrics
	cfg      SamplerConfig
	now      func() time.Time
	l        *applogger.Logger

	mu         sync.RWMutex
	latest     models.ClockTick
	hasLatest  bool
	prediction []models.PredictedOccurrence

	wg sync.WaitGroup
}

func NewClockSampler(
	detector domsvc.PatternDetector,
	forecast domsvc.Forecaster,
	history *PatternHistory,
	sink EventSink,
	hub Broadcaster,
	metrics drepo.Metrics,
	cfg SamplerConfig,
	l *applogger.Logger,
) *ClockSampler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second
	}
	if cfg.ForecastInterval <= 0 {
		cfg.ForecastInterval = time.Minute
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &ClockSampler{
		detector: detector,
		forecast: forecast,
		history:  history,
		sink:     sink,
		hub:      hub,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
		l:        l.With(applogger.String("component", "clock_sampler")),
	}
}

// Start runs both loops until ctx is cancelled. The first forecast is computed
// before Start returns.
func (s *ClockSampler) Start(ctx context.Context) error {
	s.refreshForecast(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sampleT := time.NewTicker(s.cfg.SampleInterval)
		forecastT := time.NewTicker(s.cfg.ForecastInterval)
		defer sampleT.Stop()
		defer forecastT.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sampleT.C:
				s.sample(ctx)
			case <-forecastT.C:
				s.refreshForecast(ctx)
			}
		}
	}()

	s.l.Info("clock sampler started",
		applogger.String("timezone", s.cfg.Location.String()),
		applogger.Duration("sample_interval_ms", s.cfg.SampleInterval),
		applogger.Duration("forecast_interval_ms", s.cfg.ForecastInterval))
	return nil
}

// Wait blocks until the loops exit after ctx cancellation.
func (s *ClockSampler) Wait() {
	s.wg.Wait()
}

func (s *ClockSampler) sample(ctx context.Context) models.ClockTick {
	ts := models.NewTimeSample(s.now().In(s.cfg.Location))
	active := s.detector.Detect(ts)

	tick := models.ClockTick{
		Sample:   ts,
		At:       ts.Instant,
		Timezone: s.cfg.Location.String(),
		Clock:    ts.Clock(),
		Active:   active,
	}

	s.mu.Lock()
	s.latest, s.hasLatest = tick, true
	s.mu.Unlock()

	if s.history != nil {
		s.history.Record(active)
	}
	if s.hub != nil {
		s.hub.Broadcast(KindTick, tick)
	}

	for _, p := range active {
		s.metrics.RecordPatternDetected(p.ID)
		if s.sink == nil {
			continue
		}
		if err := s.sink.Process(ctx, NewPatternEvent(p, tick.Timezone)); err != nil {
			s.l.Debug("export deferred", applogger.String("pattern", p.ID), applogger.Error(err))
		}
	}
	return tick
}

func (s *ClockSampler) refreshForecast(ctx context.Context) {
	if s.forecast == nil {
		return
	}
	ts := models.NewTimeSample(s.now().In(s.cfg.Location))
	out, err := s.forecast.Forecast(ctx, ts, s.cfg.Forecast)
	if err != nil {
		s.metrics.RecordError("forecast_refresh")
		s.l.Warn("forecast refresh failed", applogger.Error(err))
		return
	}

	s.mu.Lock()
	s.prediction = out
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(KindForecast, out)
	}
}

// Latest returns the last tick, false before the first sample.
func (s *ClockSampler) Latest() (models.ClockTick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLatest
}

// Forecast returns the last refreshed forecast.
func (s *ClockSampler) Forecast() []models.PredictedOccurrence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PredictedOccurrence, len(s.prediction))
	copy(out, s.prediction)
	return out
}
