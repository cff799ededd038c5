package server

import (
	"context"
	"log"
	"net/http"
	"time"
)

// RunKeepAlive periodically GETs the configured URL (normally this service's
// own /wake route behind its public hostname) so free-tier hosts don't spin
// the process down. No-op when no URL is configured.
func (s *Server) RunKeepAlive(ctx context.Context) {
	if s.cfg.KeepAliveURL == "" {
		return
	}

	client := &http.Client{Timeout: 30 * time.Second}
	ticker := time.NewTicker(s.cfg.KeepAliveInterval)
	defer ticker.Stop()

	log.Printf("[Server.RunKeepAlive] pinging %s every %s", s.cfg.KeepAliveURL, s.cfg.KeepAliveInterval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.KeepAliveURL, nil)
			if err != nil {
				log.Printf("[Server.RunKeepAlive] bad request: %v", err)
				return
			}
			resp, err := client.Do(req)
			if err != nil {
				log.Printf("[Server.RunKeepAlive] ping failed: %v", err)
				continue
			}
			resp.Body.Close()
		}
	}
}
