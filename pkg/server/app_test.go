package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	"CosmicClock/internal/middleware"
	"CosmicClock/internal/services/patterns"
	"CosmicClock/internal/usecase"
	"CosmicClock/pkg/config"
	xhttp "CosmicClock/pkg/http"
	applogger "CosmicClock/pkg/logger"
	"CosmicClock/pkg/metrics"
)

type memArchive struct {
	mu      sync.Mutex
	initErr error
	inits   int
	events  []*models.PatternEvent
	closed  bool
}

func (a *memArchive) Init(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inits++
	return a.initErr
}

func (a *memArchive) Store(_ context.Context, e *models.PatternEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return nil
}

func (a *memArchive) StoreBatch(ctx context.Context, events []*models.PatternEvent) error {
	for _, e := range events {
		_ = a.Store(ctx, e)
	}
	return nil
}

func (a *memArchive) Stats(context.Context, time.Time, time.Time, domrepo.Granularity) ([]models.PatternCount, error) {
	return nil, nil
}

func (a *memArchive) Health(context.Context) error { return nil }

func (a *memArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *memArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func newTestApp(t *testing.T, arch *memArchive) *App {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Server.ShutdownTimeout = time.Second

	reg := prometheus.NewRegistry()
	rec := metrics.NewWithRegisterer(reg)
	proc := usecase.NewPatternProcessor(nil, arch, rec, usecase.BackendClickHouse)
	pipe := middleware.NewRealtimePipeline(proc, rec, middleware.WithThrottleWindow(0))
	sampler := usecase.NewClockSampler(patterns.NewDetector(), nil, usecase.NewPatternHistory(10), pipe, nil, rec,
		usecase.SamplerConfig{Location: time.UTC, SampleInterval: 10 * time.Millisecond}, nil)
	srv := xhttp.NewServer(applogger.Nop(), nil,
		xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithMetrics("", reg, reg))

	return New(cfg, applogger.Nop(), sampler, pipe, proc, arch, nil, srv, Resources{})
}

func TestRunContextStartsAndStops(t *testing.T) {
	arch := &memArchive{}
	app := newTestApp(t, arch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := app.sampler.Latest()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}

	assert.Equal(t, 1, arch.inits)
	assert.True(t, arch.closed)
}

func TestRunContextFailsOnArchiveInit(t *testing.T) {
	arch := &memArchive{initErr: errors.New("no such database")}
	app := newTestApp(t, arch)

	err := app.RunContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init archive")
	_, ok := app.sampler.Latest()
	assert.False(t, ok)
}
