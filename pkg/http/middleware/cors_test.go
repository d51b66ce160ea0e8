package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsEcho(origins ...string) *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:       600,
	}))
	e.GET("/api/clock", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	e := corsEcho("https://clock.example")
	req := httptest.NewRequest(http.MethodGet, "/api/clock", nil)
	req.Header.Set(echo.HeaderOrigin, "https://clock.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://clock.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	e := corsEcho("https://clock.example")
	req := httptest.NewRequest(http.MethodGet, "/api/clock", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORSPreflight(t *testing.T) {
	e := corsEcho("*")
	req := httptest.NewRequest(http.MethodOptions, "/api/clock", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestCORSSkipsWebSocketUpgrade(t *testing.T) {
	e := corsEcho("*")
	req := httptest.NewRequest(http.MethodGet, "/api/clock", nil)
	req.Header.Set(echo.HeaderUpgrade, "websocket")
	req.Header.Set(echo.HeaderOrigin, "https://clock.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
