package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/duelpong/go/internal/peer"
	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/pong/render"
	"github.com/mcdev12/duelpong/go/internal/pong/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	game, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game config")
	}

	relayURL := config.GetEnv("RELAY_URL", "ws://localhost:8080")
	matchID := config.GetEnv("MATCH_ID", "")
	if matchID == "" && config.GetEnvAsBool("JOIN_OPEN", true) {
		matchID = findOpenMatch(relayURL)
	}
	if matchID == "" {
		matchID = uuid.New().String()
	}
	cfg := peer.Config{
		RelayURL:  relayURL,
		MatchID:   matchID,
		Autostart: config.GetEnvAsBool("AUTOSTART", true),
		Game:      game,
	}
	autopilot := config.GetEnvAsBool("AUTOPILOT", false)
	draw := config.GetEnvAsBool("RENDER", true)

	stdin, stdout := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	interactive := draw && !autopilot

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []session.RunnerOption
	var screen *render.Text
	if draw {
		cols, rows := render.TerminalSize(stdout, 80, 24)
		screen = render.NewText(os.Stdout, cols, rows, render.WithColor(true))
		opts = append(opts, session.WithRenderer(screen))
		// logs would scroll the playfield away
		if level < zerolog.WarnLevel {
			level = zerolog.WarnLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	if autopilot {
		opts = append(opts, session.WithTickHook(peer.NewAutopilot(cfg).Tick))
	}

	err = play(ctx, stop, cfg, opts, screen, interactive, stdin)
	switch {
	case errors.Is(err, peer.ErrRoomFull):
		log.Error().Str("match_id", matchID).Msg("match already has two players")
	case err != nil:
		log.Error().Err(err).Str("match_id", matchID).Msg("match ended")
	default:
		log.Info().Str("match_id", matchID).Msg("left match")
	}
}

// findOpenMatch asks the relay for a waiting opponent; failures fall back to a new match
func findOpenMatch(relayURL string) string {
	lobby, err := peer.NewLobby(relayURL)
	if err != nil {
		log.Warn().Err(err).Msg("lobby unavailable")
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := lobby.FindOpenMatch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not list open matches")
		return ""
	}
	if id != "" {
		log.Info().Str("match_id", id).Msg("joining open match")
	}
	return id
}

// play runs the match; the terminal is restored before it returns
func play(ctx context.Context, stop context.CancelFunc, cfg peer.Config, opts []session.RunnerOption,
	screen *render.Text, interactive bool, stdin int) error {
	client, err := peer.Dial(ctx, cfg, opts...)
	if err != nil {
		return err
	}

	if interactive {
		restore, err := render.RawMode(stdin)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer restore()

		keyboardCtx, quit := context.WithCancel(ctx)
		defer quit()
		go func() {
			err := peer.NewKeyboard(os.Stdin, client, clockwork.NewRealClock()).Run(keyboardCtx)
			if errors.Is(err, peer.ErrQuit) {
				stop()
			}
		}()
	}
	if screen != nil {
		screen.HideCursor()
		defer screen.Clear()
	}

	return client.Run(ctx)
}
