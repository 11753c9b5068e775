package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/gemini-guess/internal/config"
	"github.com/robalobadob/gemini-guess/internal/database"
	"github.com/robalobadob/gemini-guess/internal/hint"
	"github.com/robalobadob/gemini-guess/internal/httpserver"
	"github.com/robalobadob/gemini-guess/internal/metrics"
	"github.com/robalobadob/gemini-guess/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := database.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	sessions := store.NewMemoryStore()
	srv := httpserver.New(httpserver.Options{
		Config:    cfg,
		Sessions:  sessions,
		DB:        db,
		Generator: hint.NewGemini(cfg.GeminiModel),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pruneSessions(ctx, sessions, cfg.SessionTTL)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting gemini-guess server")
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

// pruneSessions drops sessions idle for longer than ttl, forgetting their keys.
func pruneSessions(ctx context.Context, sessions store.Store, ttl time.Duration) {
	every := ttl / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Prune(ctx, time.Now().Add(-ttl)); n > 0 {
				log.Info().Int("pruned", n).Msg("expired sessions removed")
			}
			metrics.ActiveSessions.Set(float64(sessions.Len()))
		}
	}
}
