package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/duelpong/go/internal/dbconfig"
	"github.com/mcdev12/duelpong/go/internal/pong/config"
	"github.com/mcdev12/duelpong/go/internal/relay"
	"github.com/mcdev12/duelpong/go/internal/relay/ledger"
	"github.com/mcdev12/duelpong/go/internal/relay/natstap"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	game, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game config")
	}

	port := config.GetEnv("PORT", "8080")
	natsURL := os.Getenv("NATS_URL")
	origins := splitList(config.GetEnv("ALLOWED_ORIGINS", "*"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observers := setupObservers(ctx, natsURL, dbconfig.NewConfigFromEnv())
	defer observers.close()

	relayConfig := relay.DefaultConfig()
	relayConfig.ConnectionConfig.CheckOrigin = originChecker(origins)
	relayService := relay.NewService(relayConfig, observers.list...)

	server := setupServer(port, origins, relayService, game)

	log.Info().
		Str("port", port).
		Bool("nats", natsURL != "").
		Int("observers", len(observers.list)).
		Int("win_score", game.WinScore).
		Msg("starting match relay")

	go func() {
		if err := relayService.Start(ctx); err != nil {
			log.Error().Err(err).Msg("match relay failed")
		}
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Hijacked websocket connections are not covered by Shutdown; cancelling drops them
	cancel()

	log.Info().Msg("match relay shutdown complete")
}

type observerSet struct {
	list    []relay.Observer
	closers []func()
}

func (o *observerSet) close() {
	for _, c := range o.closers {
		c()
	}
}

// setupObservers connects the optional membership sinks. A sink that cannot be reached
// is logged and skipped; the relay itself never depends on them.
func setupObservers(ctx context.Context, natsURL string, dbCfg dbconfig.Config) *observerSet {
	set := &observerSet{}

	if natsURL != "" {
		jsCfg := natstap.DefaultJetStreamConfig()
		jsCfg.URL = natsURL
		jsCfg.StreamName = config.GetEnv("NATS_STREAM", jsCfg.StreamName)

		publisher, err := natstap.NewPublisher(ctx, jsCfg)
		if err != nil {
			log.Error().Err(err).Str("nats_url", natsURL).Msg("room events will not be published")
		} else {
			set.list = append(set.list, publisher)
			set.closers = append(set.closers, func() { publisher.Close() })
		}
	}

	if dbCfg.Enabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		l, err := ledger.Open(connectCtx, dbCfg.DSN())
		if err != nil {
			log.Error().Err(err).Str("database", dbCfg.Database).Msg("match sessions will not be recorded")
		} else {
			set.list = append(set.list, l)
			set.closers = append(set.closers, l.Close)
		}
	}

	return set
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
