package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tapquest/tapquest-backend/internal/config"
	"github.com/tapquest/tapquest-backend/internal/game"
	"github.com/tapquest/tapquest-backend/internal/server"
	"github.com/tapquest/tapquest-backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	opts := game.Options{
		Countdown:     cfg.CountdownDuration,
		Grace:         cfg.GameOverGrace,
		MaxSessionAge: cfg.MaxSessionAge,
		SweepInterval: cfg.SweepInterval,
	}

	if cfg.DatabaseURL != "" {
		results, err := store.NewResultStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[main] result store: %v", err)
		}
		defer results.Close()
		opts.Store = results
	} else {
		log.Println("[main] DATABASE_URL not set, game results will not be archived")
	}

	hub := game.NewHub(opts)
	go hub.Run(ctx)

	srv := server.New(cfg, hub)
	go srv.RunKeepAlive(ctx)

	log.Printf("[main] listening on :%d", cfg.Port)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[main] server: %v", err)
	}
	log.Println("[main] shut down")
}
