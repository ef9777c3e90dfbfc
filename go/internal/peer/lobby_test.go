package peer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestLobbyFindOpenMatch(t *testing.T) {
	agents := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/matches" {
			http.NotFound(w, r)
			return
		}
		agents <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"matchId":"old","members":1,"openedAt":"2026-01-01T00:00:00Z"},{"matchId":"new","members":1,"openedAt":"2026-01-02T00:00:00Z"}]`))
	}))
	defer srv.Close()

	// the websocket form of the address resolves to the same host
	lobby, err := NewLobby("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("NewLobby() error = %v", err)
	}
	lobby.SetHeader("User-Agent", "duelpong-test")

	id, err := lobby.FindOpenMatch(context.Background())
	if err != nil {
		t.Fatalf("FindOpenMatch() error = %v", err)
	}
	if id != "old" {
		t.Errorf("FindOpenMatch() = %q, want the oldest room", id)
	}
	if got := <-agents; got != "duelpong-test" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestLobbyEmptyAndErrors(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	lobby, err := NewLobby(srv.URL + "/")
	if err != nil {
		t.Fatalf("NewLobby() error = %v", err)
	}

	id, err := lobby.FindOpenMatch(context.Background())
	if err != nil || id != "" {
		t.Errorf("FindOpenMatch() = %q, %v, want empty", id, err)
	}

	status.Store(http.StatusInternalServerError)
	if _, err := lobby.OpenMatches(context.Background()); err == nil {
		t.Error("OpenMatches() succeeded on a 500")
	}

	if _, err := NewLobby("ftp://relay"); err == nil {
		t.Error("NewLobby() accepted an ftp url")
	}
}
