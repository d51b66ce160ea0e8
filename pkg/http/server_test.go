package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "CosmicClock/pkg/logger"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/boom", func(echo.Context) error { panic("boom") })
	e.GET("/limited", func(c echo.Context) error {
		return AppErrorResponse(c, TooManyRequestsError("slow down"))
	})
	e.GET("/opaque", func(c echo.Context) error {
		return AppErrorResponse(c, errors.New("db down"))
	})
	e.GET("/bind", func(c echo.Context) error {
		req := &struct {
			Cap int `query:"cap" default:"10" validate:"min=1,max=10"`
		}{}
		if verr := ReadAndValidateRequest(c, req); verr != nil {
			return BadRequestResponse(c, verr)
		}
		return SuccessResponse(c, req.Cap)
	})
}

func newTestServer() *Server {
	reg := prometheus.NewRegistry()
	return NewServer(applogger.Nop(), []Handler{routes{}}, WithMetrics("/metrics", reg, reg))
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServerHealthAndMetrics(t *testing.T) {
	s := newTestServer()
	rec := serve(s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerRecoversPanics(t *testing.T) {
	rec := serve(newTestServer(), http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestAppErrorResponseStatus(t *testing.T) {
	s := newTestServer()
	rec := serve(s, http.MethodGet, "/limited")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")

	rec = serve(s, http.MethodGet, "/opaque")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
	assert.Contains(t, rec.Body.String(), "ERR_INTERNAL")
}

func TestReadAndValidateRequest(t *testing.T) {
	s := newTestServer()
	rec := serve(s, http.MethodGet, "/bind")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"OK","data":10}`, rec.Body.String())

	rec = serve(s, http.MethodGet, "/bind?cap=11")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_MAX")
}
