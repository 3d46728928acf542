package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"recommendations-service/internal/services/health"
	"recommendations-service/internal/shared/config"
)

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRouterServesIndexAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{Config: config.Config{}, Health: health.NewService("memory")})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for index, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if payload["store"] != "memory" {
		t.Fatalf("unexpected store: %v", payload["store"])
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}
}

func TestRouterUnknownPathReturnsMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["message"] == "" || payload["message"] == nil {
		t.Fatalf("expected message field, got %v", payload)
	}
}

func TestNewRouterKeepsCallerGinMode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_ = NewRouter(RouterDeps{Health: health.NewService("memory")})
	if got := gin.Mode(); got != gin.TestMode {
		t.Fatalf("expected gin mode %q after NewRouter, got %q", gin.TestMode, got)
	}
}
