package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tapquest/tapquest-backend/internal/config"
	"github.com/tapquest/tapquest-backend/internal/game"
)

// Server is the HTTP surface in front of the hub: the websocket endpoint
// plus a few small JSON routes for health checks and wake-up pings.
type Server struct {
	cfg   *config.Config
	hub   *game.Hub
	start time.Time

	// lastPing is the unix-milli timestamp of the most recent /wake hit,
	// read by /healthz. Touched from request goroutines, hence atomic.
	lastPing atomic.Int64
}

func New(cfg *config.Config, hub *game.Hub) *Server {
	s := &Server{
		cfg:   cfg,
		hub:   hub,
		start: time.Now(),
	}
	s.lastPing.Store(time.Now().UnixMilli())
	return s
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) touch() {
	s.lastPing.Store(time.Now().UnixMilli())
}
