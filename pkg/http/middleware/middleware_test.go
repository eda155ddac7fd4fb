package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw...)
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})
	return e
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	e := newEcho(RequestID())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := rec.Header().Get(RequestIDHeader)
	if id == "" || rec.Body.String() != id {
		t.Fatalf("generated id %q not exposed to handler (%q)", id, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("incoming id not reused")
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newEcho(CORS(CORSConfig{
		AllowOrigins:  []string{"https://app.example"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderContentType},
		MaxAgeSeconds: 60,
	}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "https://app.example" {
		t.Fatalf("allow-origin = %q", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowMethods) != "GET, POST" {
		t.Fatalf("allow-methods = %q", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	}
	if rec.Header().Get(echo.HeaderAccessControlMaxAge) != "60" {
		t.Fatalf("max-age = %q", rec.Header().Get(echo.HeaderAccessControlMaxAge))
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	e := newEcho(CORS(CORSConfig{AllowOrigins: []string{"https://app.example"}}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "" {
		t.Fatalf("disallowed origin must not get CORS headers")
	}
}
