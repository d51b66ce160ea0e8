package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	domsvc "CosmicClock/internal/domain/service"
	"CosmicClock/internal/service/metrics"
	"CosmicClock/internal/service/ratelimit"
	"CosmicClock/internal/services/flavor"
	"CosmicClock/internal/services/patterns"
	"CosmicClock/internal/usecase"
	xhttp "CosmicClock/pkg/http"
	applogger "CosmicClock/pkg/logger"
	xutil "CosmicClock/pkg/util"
)

// MaxHorizon bounds the predict horizon accepted over HTTP.
const MaxHorizon = 168 * time.Hour

// LiveSource exposes the last sampler tick.
type LiveSource interface {
	Latest() (models.ClockTick, bool)
}

// RateLimit is a per-client token bucket setting for the predict endpoint.
type RateLimit struct {
	Capacity     float64
	RefillPerSec float64
}

// PatternsHandler serves detection, prediction, history and clock readings.
type PatternsHandler struct {
	detector   domsvc.PatternDetector
	catalog    patterns.Catalog
	forecaster domsvc.Forecaster
	history    *usecase.PatternHistory
	archive    domrepo.PatternArchive
	live       LiveSource
	hub        *Hub
	rl         *ratelimit.Limiter
	limit      RateLimit
	markets    []flavor.Market
	now        func() time.Time
	l          *applogger.Logger
}

func NewPatternsHandler(
	l *applogger.Logger,
	detector domsvc.PatternDetector,
	catalog patterns.Catalog,
	forecaster domsvc.Forecaster,
	history *usecase.PatternHistory,
	archive domrepo.PatternArchive,
	live LiveSource,
	hub *Hub,
	rl *ratelimit.Limiter,
	limit RateLimit,
) *PatternsHandler {
	metrics.Register()
	if l == nil {
		l = applogger.Nop()
	}
	if rl == nil {
		rl = ratelimit.New()
	}
	return &PatternsHandler{
		detector:   detector,
		catalog:    catalog,
		forecaster: forecaster,
		history:    history,
		archive:    archive,
		live:       live,
		hub:        hub,
		rl:         rl,
		limit:      limit,
		markets:    flavor.DefaultMarkets,
		now:        time.Now,
		l:          l.With(applogger.String("component", "patterns_handler")),
	}
}

func (h *PatternsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/patterns/detect", h.Detect)
	g.GET("/patterns/predict", h.Predict)
	g.GET("/patterns/catalog", h.Catalog)
	g.GET("/patterns/catalog/:id", h.CatalogEntry)
	g.GET("/patterns/history", h.History)
	g.DELETE("/patterns/history", h.ClearHistory)
	g.GET("/patterns/archive/stats", h.ArchiveStats)
	g.GET("/clock", h.Clock)
	g.GET("/clock/live", h.Live)
	if h.hub != nil {
		e.GET("/ws/patterns", h.hub.ServeWS)
	}
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// resolveInstant reads at/tz. An empty at is now.
func (h *PatternsHandler) resolveInstant(at, tz string) (time.Time, *xhttp.AppError) {
	loc, err := xutil.LoadLocation(tz)
	if err != nil {
		return time.Time{}, xhttp.BadRequestErrorf("unknown timezone %q", tz).WithError(err)
	}
	t := h.now()
	if at != "" {
		parsed, ok := xutil.ParseTime(at)
		if !ok {
			return time.Time{}, xhttp.BadRequestErrorf("invalid at %q", at)
		}
		t = parsed
	}
	return t.In(loc), nil
}

func (h *PatternsHandler) Detect(c echo.Context) error {
	defer observe("detect", time.Now())
	req := &models.DetectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, appErr := h.resolveInstant(req.At, req.TZ)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, h.detector.Detect(models.NewTimeSample(t)))
}

func (h *PatternsHandler) Predict(c echo.Context) error {
	const endpoint = "predict"
	defer observe(endpoint, time.Now())

	if h.limit.Capacity > 0 && !h.rl.Allow(c.RealIP(), h.limit.Capacity, h.limit.RefillPerSec) {
		metrics.RateLimited.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("predict rate limit exceeded"))
	}

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, appErr := h.resolveInstant(req.At, req.TZ)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	horizon, err := time.ParseDuration(req.Horizon)
	if err != nil || horizon <= 0 || horizon > MaxHorizon {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("horizon must be a duration in (0, %s]", MaxHorizon))
	}

	opts := patterns.PredictOptions{
		Horizon:      horizon,
		Cap:          req.Cap,
		PerPredicate: req.Per,
		Only:         xutil.SplitCSV(req.IDs),
	}
	for _, id := range opts.Only {
		if id == patterns.AllPatterns {
			continue
		}
		if _, ok := h.catalog.Lookup(id); !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown pattern id %q", id))
		}
	}

	out, err := h.forecaster.Forecast(c.Request().Context(), models.NewTimeSample(t), opts)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("forecast failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *PatternsHandler) Catalog(c echo.Context) error {
	out := make([]models.CatalogEntry, 0, len(h.catalog))
	for _, d := range h.catalog {
		out = append(out, models.CatalogEntry{ID: d.ID, Name: d.Name, Category: d.Category, Family: string(d.Family)})
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *PatternsHandler) CatalogEntry(c echo.Context) error {
	d, ok := h.catalog.Lookup(c.Param("id"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no pattern with id "+c.Param("id")))
	}
	return xhttp.SuccessResponse(c, models.CatalogEntry{ID: d.ID, Name: d.Name, Category: d.Category, Family: string(d.Family)})
}

func (h *PatternsHandler) History(c echo.Context) error {
	entries := h.history.Entries()
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *PatternsHandler) ClearHistory(c echo.Context) error {
	h.history.Reset()
	return xhttp.NoContentResponse(c)
}

func (h *PatternsHandler) ArchiveStats(c echo.Context) error {
	const endpoint = "archive_stats"
	defer observe(endpoint, time.Now())

	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("no archive backend configured"))
	}
	req := &models.ArchiveStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	g := domrepo.NormalizeGranularity(req.Granularity)
	now := h.now()
	to := xutil.ParseTimeDefault(req.To, now)
	from := xutil.ParseTimeDefault(req.From, to.Add(-24*time.Hour))
	if !from.Before(to) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("from must be before to"))
	}
	// widen to whole buckets; the archive range is half-open
	from, to = xutil.AlignRange(from, to.Add(g.Duration()-time.Nanosecond), g.Duration())

	rows, err := h.archive.Stats(c.Request().Context(), from, to, g)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.l.Error("archive stats failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PatternsHandler) Clock(c echo.Context) error {
	req := &models.ClockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, appErr := h.resolveInstant(req.At, req.TZ)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, flavor.Readings(t, h.markets))
}

func (h *PatternsHandler) Live(c echo.Context) error {
	if h.live == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("sampler not running"))
	}
	tick, ok := h.live.Latest()
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("no sample yet"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.DataResponse(c, http.StatusOK, tick)
}
