package internal

import (
	"time"
)

const (
	MaxPlayersPerSession = 4
	MinPlayersToStart    = 2
	MaxRounds            = 3

	CountdownDuration = 3 * time.Second
	GameOverGrace     = 30 * time.Second
	MaxSessionAge     = 30 * time.Minute
	SweepInterval     = 5 * time.Minute

	SessionCodeLength = 6

	// MaxActionPoints caps a single scoring tap. Point values inside the cap
	// are applied as reported by the client (see DESIGN.md, trust boundary).
	MaxActionPoints = 1000
)

type Phase string

const (
	PhaseLobby           Phase = "lobby"
	PhaseStarting        Phase = "starting"
	PhasePlaying         Phase = "playing"
	PhaseRoundTransition Phase = "round_transition"
	PhaseGameOver        Phase = "game_over"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Session struct {
	Id         string
	Visibility Visibility
	Phase      Phase

	// Players is the ordered roster; a player's index never changes after
	// joining, so Seat == index+1 for the session's whole lifetime. Players
	// are marked disconnected, never removed.
	Players []*Player

	RoundNumber int
	MaxRounds   int
	TargetType  string

	GameStarted bool
	// CountdownGen distinguishes the live countdown from cancelled ones; a
	// countdown timer that fires with a stale generation is a no-op.
	CountdownGen int

	CreatedAt time.Time
}

// GameResult is the record archived for a finished session.
type GameResult struct {
	SessionID    string
	Visibility   Visibility
	RoundsPlayed int
	WinnerID     string
	FinishedAt   time.Time
	Players      []PlayerResult
}

type PlayerResult struct {
	PlayerID  string
	Seat      int
	Character string
	Score     int
	Connected bool
}
