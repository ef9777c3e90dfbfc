package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/relay"
)

type fakeLister []relay.MatchSummary

func (f fakeLister) OpenMatches() []relay.MatchSummary { return f }

func newTestMux(matches fakeLister) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(matches, config.Default()).RegisterRoutes(mux)
	return mux
}

func serve(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGamePage(t *testing.T) {
	rec := serve(newTestMux(nil), "/game/42")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"match 42",
		`width="800"`,
		`"paddleHeight":100`,
		"match_id=42",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestGamePageFollowsGoalAuthority(t *testing.T) {
	body := serve(newTestMux(nil), "/game/42").Body.String()

	// The browser client speaks the same protocol as the Go session: ball reports are
	// mirrored into the receiver's frame and only the defending side reports a goal.
	for _, want := range []string{
		`x: cfg.width - ball.size - ball.x`,
		`emit("collision", { ball: peerBall() })`,
		`emit("resetBall", { ball: peerBall() })`,
		`emit("point", { player: opponentSeat })`,
		`parked = true`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("client script missing %q", want)
		}
	}
	if strings.Contains(body, `scorer = seat`) {
		t.Error("client script still scores the opponent's goal line")
	}
}

func TestGamePageRejectsBadID(t *testing.T) {
	if rec := serve(newTestMux(nil), "/game/a.b"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestNewGameRedirects(t *testing.T) {
	rec := serve(newTestMux(nil), "/game/new")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	id, ok := strings.CutPrefix(loc, "/game/")
	if !ok {
		t.Fatalf("Location = %q", loc)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("match id %q is not a uuid: %v", id, err)
	}
}

func TestListMatches(t *testing.T) {
	opened := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mux := newTestMux(fakeLister{{MatchID: "42", Members: 1, OpenedAt: opened}})

	rec := serve(mux, "/api/matches")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got []relay.MatchSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].MatchID != "42" || got[0].Members != 1 || !got[0].OpenedAt.Equal(opened) {
		t.Errorf("listing = %+v", got)
	}
}

func TestLobby(t *testing.T) {
	tests := []struct {
		name    string
		matches fakeLister
		want    string
	}{
		{"empty", nil, "No open matches."},
		{"one open", fakeLister{{MatchID: "abc", Members: 1, OpenedAt: time.Now()}}, `href="/game/abc"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newTestMux(tt.matches), "/")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("lobby missing %q", tt.want)
			}
		})
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	if rec := serve(newTestMux(nil), "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
