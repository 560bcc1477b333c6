package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cesizen/cesizen/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: "8080"},
	}
}

func TestNew(t *testing.T) {
	srv := New(testConfig(), nil)

	assert.NotNil(t, srv)
	assert.NotNil(t, srv.Echo())
	assert.True(t, srv.Echo().HideBanner)
}

func TestRouteRegistration(t *testing.T) {
	srv := New(testConfig(), nil)

	srv.Get("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestGroupWithMiddleware(t *testing.T) {
	srv := New(testConfig(), nil)

	var seen bool
	group := srv.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			seen = true
			return next(c)
		}
	})
	group.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen)
}
