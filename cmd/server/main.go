package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/classify"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/config"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/hub"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/platform/logging"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/scorer"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/server"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/session"
	"github.com/Oisind123/FYP-Live-Stream-Moderation-Tool/internal/source"
)

func runGracefulShutdown(srv *server.Server, sessions *session.Controller) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		sessions.Stop()
		close(done)
	}()

	return done
}

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	clock := clockwork.NewRealClock()

	scoringClient := scorer.New(cfg.ScorerURL, cfg.ScorerTimeout, cfg.ScorerRateLimit)
	classifier := classify.New(scoringClient, cfg.ThresholdElements, cfg.ThresholdLikely)
	broadcastHub := hub.New(cfg.SubscriberBuffer, cfg.MaxSubscribers)
	chatFactory := source.NewFactory(nil, clock)

	sessions := session.New(chatFactory, classifier, broadcastHub, clock, cfg.PollBackoff, cfg.StopTimeout)
	srv := server.NewServer(cfg, sessions, broadcastHub, clock)

	done := runGracefulShutdown(srv, sessions)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
