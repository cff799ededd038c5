package internal

import (
	"time"
)

// Player is one seat in a session. It carries only the opaque connection
// identity, never the connection itself; the transport association lives in
// the ConnectionDirectory.
type Player struct {
	ConnID    string `json:"id"`
	Seat      int    `json:"seat"`
	Character string `json:"character"`
	Score     int    `json:"score"`

	IsReady     bool      `json:"is_ready"`
	IsConnected bool      `json:"is_connected"`
	IsHost      bool      `json:"is_host"`
	JoinedAt    time.Time `json:"joined_at"`
}

type PlayerSnapshot struct {
	ID          string `json:"id"`
	Seat        int    `json:"seat"`
	Character   string `json:"character"`
	Score       int    `json:"score"`
	IsReady     bool   `json:"is_ready"`
	IsConnected bool   `json:"is_connected"`
	IsHost      bool   `json:"is_host"`
}

func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		ID:          p.ConnID,
		Seat:        p.Seat,
		Character:   p.Character,
		Score:       p.Score,
		IsReady:     p.IsReady,
		IsConnected: p.IsConnected,
		IsHost:      p.IsHost,
	}
}
