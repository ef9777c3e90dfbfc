package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/relay"
)

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"listed", []string{"https://pong.example"}, "https://pong.example", true},
		{"unlisted", []string{"https://pong.example"}, "https://evil.example", false},
		{"no origin header", []string{"https://pong.example"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/match?match_id=1", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.origins)(r); got != tt.want {
				t.Errorf("originChecker() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example, ,https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("splitList() = %q", got)
	}
}

func TestServerRoutes(t *testing.T) {
	srv := setupServer("0", []string{"*"}, relay.NewService(relay.DefaultConfig()), config.Default())

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/api/matches", http.StatusOK},
		{"/ws/stats", http.StatusOK},
		{"/game/42", http.StatusOK},
		{"/ws/match", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}
