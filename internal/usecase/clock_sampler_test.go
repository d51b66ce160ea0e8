package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CosmicClock/internal/middleware"
	"CosmicClock/internal/services/patterns"
	"CosmicClock/pkg/cache"
)

func newTestSampler(t *testing.T, at time.Time) (*ClockSampler, *fakeArchive, *fakeHub, *fakeMetrics) {
	t.Helper()
	m := newFakeMetrics()
	arch := &fakeArchive{}
	hub := &fakeHub{}
	proc := NewPatternProcessor(nil, arch, m, BackendClickHouse)
	pipe := middleware.NewRealtimePipeline(proc, m)
	mem := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	t.Cleanup(func() { _ = mem.Close() })
	fs := NewForecastService(patterns.NewPredictor(), mem, m, time.Minute, nil)

	s := NewClockSampler(patterns.NewDetector(), fs, NewPatternHistory(10), pipe, hub, m, SamplerConfig{
		Location: time.UTC,
		Forecast: patterns.PredictOptions{Only: []string{"triple-equal"}},
	}, nil)
	s.now = func() time.Time { return at }
	return s, arch, hub, m
}

func TestSamplerTickAtLeetTime(t *testing.T) {
	s, arch, hub, m := newTestSampler(t, time.Date(2024, 1, 15, 13, 37, 0, 0, time.UTC))

	_, ok := s.Latest()
	assert.False(t, ok)

	tick := s.sample(context.Background())
	assert.Equal(t, "13:37:00", tick.Clock)
	assert.Equal(t, "UTC", tick.Timezone)

	ids := make([]string, 0, len(tick.Active))
	for _, p := range tick.Active {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "leet")
	assert.Equal(t, 1, m.detected["leet"])

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, tick.At, latest.At)

	require.NotEmpty(t, s.history.Entries())
	assert.Equal(t, "leet", s.history.Entries()[0].ID)

	assert.Len(t, arch.events, len(tick.Active), "every active pattern is exported once")
	assert.Equal(t, []string{KindTick}, hub.kinds)

	s.sample(context.Background())
	assert.Len(t, arch.events, len(tick.Active), "second tick in the same minute is throttled")
}

func TestSamplerRefreshForecast(t *testing.T) {
	s, _, hub, _ := newTestSampler(t, time.Date(2024, 1, 15, 5, 5, 5, 0, time.UTC))

	s.refreshForecast(context.Background())
	got := s.Forecast()
	require.NotEmpty(t, got)
	assert.Equal(t, "triple-equal", got[0].ID)
	assert.Equal(t, "06:06:06", got[0].OccurringAt.Format("15:04:05"))
	assert.Equal(t, []string{KindForecast}, hub.kinds)
}

func TestSamplerStartStops(t *testing.T) {
	s, _, _, _ := newTestSampler(t, time.Date(2024, 1, 15, 13, 37, 0, 0, time.UTC))
	s.cfg.SampleInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	assert.Eventually(t, func() bool {
		_, ok := s.Latest()
		return ok
	}, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}
