package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	"CosmicClock/internal/service/ratelimit"
	"CosmicClock/internal/services/patterns"
	"CosmicClock/internal/usecase"
	applogger "CosmicClock/pkg/logger"
)

type directForecaster struct {
	p *patterns.Predictor
}

func (f directForecaster) Forecast(_ context.Context, from models.TimeSample, opts patterns.PredictOptions) ([]models.PredictedOccurrence, error) {
	return f.p.Predict(from, opts), nil
}

type stubArchive struct {
	rows     []models.PatternCount
	err      error
	from, to time.Time
}

func (a *stubArchive) Init(context.Context) error { return nil }
func (a *stubArchive) Store(context.Context, *models.PatternEvent) error { return nil }
func (a *stubArchive) StoreBatch(context.Context, []*models.PatternEvent) error { return nil }
func (a *stubArchive) Health(context.Context) error { return nil }
func (a *stubArchive) Close() error { return nil }
func (a *stubArchive) Stats(_ context.Context, from, to time.Time, _ domrepo.Granularity) ([]models.PatternCount, error) {
	a.from, a.to = from, to
	return a.rows, a.err
}

type stubLive struct {
	tick models.ClockTick
	ok   bool
}

func (s stubLive) Latest() (models.ClockTick, bool) { return s.tick, s.ok }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	e       *echo.Echo
	h       *PatternsHandler
	history *usecase.PatternHistory
	archive *stubArchive
}

func newFixture(t *testing.T, limit RateLimit, archive domrepo.PatternArchive, live LiveSource) *fixture {
	t.Helper()
	det := patterns.NewDetector()
	hist := usecase.NewPatternHistory(usecase.DefaultHistoryCap)
	h := NewPatternsHandler(applogger.Nop(), det, det.Catalog(), directForecaster{p: patterns.NewPredictor()},
		hist, archive, live, NewHub(applogger.Nop()), ratelimit.New(), limit)
	h.now = func() time.Time { return time.Date(2024, 1, 15, 13, 37, 0, 0, time.UTC) }
	e := echo.New()
	h.RegisterRoutes(e)
	f := &fixture{e: e, h: h, history: hist}
	if a, ok := archive.(*stubArchive); ok {
		f.archive = a
	}
	return f
}

func (f *fixture) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestDetectDefaultsToNow(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, env := f.do(t, http.MethodGet, "/api/patterns/detect")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.DetectedPattern
	require.NoError(t, json.Unmarshal(env.Data, &got))
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "leet")
}

func TestDetectBadTimezone(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, _ := f.do(t, http.MethodGet, "/api/patterns/detect?tz=Mars/Olympus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_BAD_REQUEST")

	rec, _ = f.do(t, http.MethodGet, "/api/patterns/detect?at=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictFiltersByID(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, env := f.do(t, http.MethodGet, "/api/patterns/predict?at=2024-01-15T12:00:00Z&ids=leet&per=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.PredictedOccurrence
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.NotEmpty(t, got)
	for _, o := range got {
		assert.Equal(t, "leet", o.ID)
		assert.True(t, o.OccurringAt.After(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)))
	}
}

func TestPredictDefaultsToForecastSubset(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, env := f.do(t, http.MethodGet, "/api/patterns/predict?at=2024-01-15T05:05:05Z")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.PredictedOccurrence
	require.NoError(t, json.Unmarshal(env.Data, &got))
	found := false
	for _, o := range got {
		assert.Contains(t, patterns.DefaultForecastIDs, o.ID)
		if o.ID == "triple-equal" && o.OccurringAt.Equal(time.Date(2024, 1, 15, 6, 6, 6, 0, time.UTC)) {
			found = true
		}
	}
	assert.True(t, found)

	rec, env = f.do(t, http.MethodGet, "/api/patterns/predict?at=2024-01-15T05:05:05Z&ids=all")
	require.Equal(t, http.StatusOK, rec.Code)
	got = nil
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got, patterns.MaxCap)
}

func TestPredictRejectsBadInput(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)

	rec, _ := f.do(t, http.MethodGet, "/api/patterns/predict?horizon=200h")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_MAXDURATION")

	rec, _ = f.do(t, http.MethodGet, "/api/patterns/predict?horizon=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/patterns/predict?cap=11")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_LTE")

	rec, _ = f.do(t, http.MethodGet, "/api/patterns/predict?ids=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictRateLimited(t *testing.T) {
	f := newFixture(t, RateLimit{Capacity: 1}, nil, nil)
	rec, _ := f.do(t, http.MethodGet, "/api/patterns/predict?ids=leet&per=1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/patterns/predict?ids=leet&per=1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")
}

func TestCatalogListsDefinitions(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, env := f.do(t, http.MethodGet, "/api/patterns/catalog")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Rows  []models.CatalogEntry `json:"rows"`
		Total int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, len(patterns.DefaultCatalog()), list.Total)
	assert.Equal(t, "leet", list.Rows[0].ID)
	assert.NotEmpty(t, list.Rows[0].Family)
}

func TestCatalogEntry(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, env := f.do(t, http.MethodGet, "/api/patterns/catalog/triple-equal")
	require.Equal(t, http.StatusOK, rec.Code)
	var entry models.CatalogEntry
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, "Triple Equal Time", entry.Name)
	assert.Equal(t, string(patterns.FamilyExact), entry.Family)

	rec, _ = f.do(t, http.MethodGet, "/api/patterns/catalog/tea-time")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")
}

func TestHistoryGetAndClear(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	f.history.Record([]models.DetectedPattern{{ID: "leet", Name: "Leet Time", Category: models.CategorySpecial}})

	rec, env := f.do(t, http.MethodGet, "/api/patterns/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"total":1`)

	rec, _ = f.do(t, http.MethodDelete, "/api/patterns/history")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.history.Entries())
}

func TestArchiveStats(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, _ := f.do(t, http.MethodGet, "/api/patterns/archive/stats")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	bucket := time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)
	f = newFixture(t, RateLimit{}, &stubArchive{rows: []models.PatternCount{{Bucket: bucket, PatternID: "leet", Count: 60}}}, nil)
	rec, env := f.do(t, http.MethodGet, "/api/patterns/archive/stats?from=2024-01-15T10:30:00Z&to=2024-01-15T13:37:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"count":60`)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), f.archive.from.UTC())
	assert.Equal(t, time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC), f.archive.to.UTC())

	rec, _ = f.do(t, http.MethodGet, "/api/patterns/archive/stats?granularity=5m")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f = newFixture(t, RateLimit{}, &stubArchive{err: errors.New("connection refused")}, nil)
	rec, _ = f.do(t, http.MethodGet, "/api/patterns/archive/stats")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestClockReadings(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	rec, env := f.do(t, http.MethodGet, "/api/clock?tz=Asia/Tokyo")
	require.Equal(t, http.StatusOK, rec.Code)

	var r models.ClockReadings
	require.NoError(t, json.Unmarshal(env.Data, &r))
	assert.Equal(t, "Asia/Tokyo", r.Timezone)
	assert.Len(t, r.Markets, 5)
	assert.Len(t, r.Fibonacci, 5)
	assert.NotEmpty(t, r.Lunar.Name)
	assert.NotEmpty(t, r.Tide.Phase)
	assert.NotEmpty(t, r.Exoplanets)
}

func TestLive(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, stubLive{})
	rec, _ := f.do(t, http.MethodGet, "/api/clock/live")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	tick := models.ClockTick{Clock: "13:37:00", Timezone: "UTC"}
	f = newFixture(t, RateLimit{}, nil, stubLive{tick: tick, ok: true})
	rec, env := f.do(t, http.MethodGet, "/api/clock/live")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"clock":"13:37:00"`)
}

func TestHubBroadcast(t *testing.T) {
	f := newFixture(t, RateLimit{}, nil, nil)
	server := httptest.NewServer(f.e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/patterns"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.h.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	f.h.hub.Broadcast(usecase.KindTick, map[string]string{"clock": "13:37:00"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, usecase.KindTick, msg.Type)
	assert.Equal(t, "13:37:00", msg.Data["clock"])

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.h.hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}
