package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tapquest/tapquest-backend/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler)
	r.HandleFunc("/healthz", s.HealthHandler)
	r.HandleFunc("/wake", s.WakeHandler)
	r.HandleFunc("/stats", s.StatsHandler)

	r.HandleFunc("/ws", game.HandleWebSocket(s.hub))

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS Headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Wildcard allows all origins
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false") // Credentials not allowed with wildcard origins

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "tapquest backend"})
}

// HealthHandler reports uptime, wake recency and live session counts. Free
// tier monitors poll this.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	pub, priv, conns := s.hub.Stats()
	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"uptime_ms":    now.Sub(s.start).Milliseconds(),
		"last_ping_ms": now.UnixMilli() - s.lastPing.Load(),
		"sessions":     pub + priv,
		"connections":  conns,
	})
}

// WakeHandler exists so the keep-alive pinger (or an external cron) has a
// cheap endpoint to hit.
func (s *Server) WakeHandler(w http.ResponseWriter, r *http.Request) {
	s.touch()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	pub, priv, conns := s.hub.Stats()
	writeJSON(w, http.StatusOK, map[string]int{
		"public_sessions":  pub,
		"private_sessions": priv,
		"connections":      conns,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
