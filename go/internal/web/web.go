// Package web serves the browser side of duelpong: a lobby of joinable matches and the
// match page that hosts the canvas client.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/relay"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templates embed.FS

// MatchLister reports rooms that still have a free seat
type MatchLister interface {
	OpenMatches() []relay.MatchSummary
}

// pageConfig is the tuning handed to the canvas client
type pageConfig struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Padding      float64 `json:"padding"`
	PaddleWidth  float64 `json:"paddleWidth"`
	PaddleHeight float64 `json:"paddleHeight"`
	BallSize     float64 `json:"ballSize"`
	PlayerSpeed  float64 `json:"playerSpeed"`
	BallSpeed    float64 `json:"ballSpeed"`
	WinScore     int     `json:"winScore"`
	ServePolicy  string  `json:"servePolicy"`
	FrameRate    int     `json:"frameRate"`
}

func newPageConfig(g config.Game) pageConfig {
	return pageConfig{
		Width:        g.Width,
		Height:       g.Height,
		Padding:      g.Padding,
		PaddleWidth:  g.PaddleWidth,
		PaddleHeight: g.PaddleHeight,
		BallSize:     g.BallSize,
		PlayerSpeed:  g.PlayerSpeed,
		BallSpeed:    g.BallSpeed,
		WinScore:     g.WinScore,
		ServePolicy:  string(g.ServePolicy),
		FrameRate:    g.FrameRate,
	}
}

// Handler serves the lobby, the match pages and the open match listing
type Handler struct {
	matches MatchLister
	game    pageConfig
	pages   *template.Template
}

// NewHandler parses the embedded templates
func NewHandler(matches MatchLister, game config.Game) *Handler {
	return &Handler{
		matches: matches,
		game:    newPageConfig(game),
		pages:   template.Must(template.ParseFS(templates, "templates/*.html")),
	}
}

// RegisterRoutes registers the page and listing routes with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleLobby)
	mux.HandleFunc("GET /api/matches", h.handleListMatches)
	mux.HandleFunc("GET /game/new", h.handleNewGame)
	mux.HandleFunc("GET /game/{id}", h.handleGame)
}

func (h *Handler) handleLobby(w http.ResponseWriter, r *http.Request) {
	h.render(w, "lobby", struct {
		Matches []relay.MatchSummary
	}{
		Matches: h.matches.OpenMatches(),
	})
}

func (h *Handler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.matches.OpenMatches()); err != nil {
		log.Error().Err(err).Msg("failed to encode match listing")
	}
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	log.Info().Str("match_id", id).Msg("created match")
	http.Redirect(w, r, "/game/"+id, http.StatusSeeOther)
}

func (h *Handler) handleGame(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")
	if !relay.ValidMatchID(matchID) {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}

	h.render(w, "game", struct {
		MatchID    string
		SocketPath string
		Game       pageConfig
	}{
		MatchID:    matchID,
		SocketPath: "/ws/match?match_id=" + url.QueryEscape(matchID),
		Game:       h.game,
	})
}

// render executes into a buffer first so a template error never leaves a half page
func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
