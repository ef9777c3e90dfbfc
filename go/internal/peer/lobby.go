package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcdev12/duelpong/go/internal/relay"
)

// Lobby queries the relay's match listing over plain HTTP
type Lobby struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// NewLobby accepts either the http(s) or the ws(s) form of the relay address
func NewLobby(relayURL string) (*Lobby, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}

	return &Lobby{
		baseURL: strings.TrimRight(u.String(), "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers: make(map[string]string),
	}, nil
}

func (l *Lobby) SetHeader(key, value string) {
	l.headers[key] = value
}

func (l *Lobby) SetTimeout(timeout time.Duration) {
	l.client.Timeout = timeout
}

func (l *Lobby) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range l.headers {
		req.Header.Set(key, value)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("relay returned status code: %d, response: %s", resp.StatusCode, body)
	}
	return body, nil
}

// OpenMatches lists rooms with a free seat, oldest first
func (l *Lobby) OpenMatches(ctx context.Context) ([]relay.MatchSummary, error) {
	body, err := l.get(ctx, "/api/matches")
	if err != nil {
		return nil, err
	}
	var matches []relay.MatchSummary
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("decode match listing: %w", err)
	}
	return matches, nil
}

// FindOpenMatch returns the oldest joinable match, or "" when every room is full
func (l *Lobby) FindOpenMatch(ctx context.Context) (string, error) {
	matches, err := l.OpenMatches(ctx)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].MatchID, nil
}
