package game

import (
	"context"
	"log"
	"time"

	"github.com/tapquest/tapquest-backend/internal"
	"github.com/tapquest/tapquest-backend/internal/utils"
)

// =============================================================================
// SESSION LIFECYCLE - LOBBY, COUNTDOWN, START
// =============================================================================

// handlePlayerReady records a readiness vote. Resubmitting the same value is
// a no-op; un-readying during the countdown cancels it and reverts the
// session to the lobby.
func (h *Hub) handlePlayerReady(connID string, d internal.PlayerReadyData) {
	s, p, err := h.sessionFor(connID, d.GameID)
	if err != nil {
		log.Printf("[Hub.handlePlayerReady] conn=%s game=%s: %v", connID, d.GameID, err)
		return
	}

	if s.Phase != internal.PhaseLobby && s.Phase != internal.PhaseStarting {
		log.Printf("[Hub.handlePlayerReady] session=%s not in lobby (phase=%s), ignoring", s.Id, s.Phase)
		return
	}

	// Character stays mutable until the game starts.
	if d.Character != "" && d.Character != p.Character && !s.GameStarted {
		p.Character = d.Character
		h.directory.Assign(connID, s.Id, d.Character)
	}

	if p.IsReady == d.Ready {
		return
	}
	p.IsReady = d.Ready

	readyCount := 0
	for _, rp := range s.Players {
		if rp.IsReady {
			readyCount++
		}
	}
	log.Printf("[Hub.handlePlayerReady] session=%s conn=%s ready=%t (%d/%d ready)",
		s.Id, connID, d.Ready, readyCount, len(s.Players))

	h.broadcast(s, envelope(internal.EventReadyStatesUpdated, internal.ReadyStatesUpdatedData{
		Ready:       s.ReadyStates(),
		ReadyCount:  readyCount,
		PlayerCount: len(s.Players),
		CanStart:    s.CanStart() && s.AreAllConnectedReady(),
	}))

	if !d.Ready && s.Phase == internal.PhaseStarting {
		h.cancelCountdown(s)
		return
	}

	// Readiness-vote start trigger: every connected player ready, at least
	// two of them present.
	if d.Ready && s.Phase == internal.PhaseLobby && s.CanStart() && s.AreAllConnectedReady() {
		h.beginCountdown(s)
	}
}

// beginCountdown is the single entry path into the starting phase; the
// fill-to-capacity rule, the readiness vote and host confirmation all funnel
// through here, so competing triggers cannot race the same flag.
func (h *Hub) beginCountdown(s *internal.Session) {
	if s.Phase != internal.PhaseLobby || s.GameStarted {
		return
	}
	s.Phase = internal.PhaseStarting
	s.CountdownGen++

	log.Printf("[Hub.beginCountdown] session=%s countdown gen=%d (%s)", s.Id, s.CountdownGen, h.countdown)
	h.broadcast(s, envelope(internal.EventStartCountdown, internal.CountdownData{
		GameID:  s.Id,
		Seconds: int(h.countdown / time.Second),
	}))
	h.timers.scheduleCountdown(h, s.Id, s.CountdownGen, h.countdown)
}

func (h *Hub) cancelCountdown(s *internal.Session) {
	if s.Phase != internal.PhaseStarting {
		return
	}
	h.timers.cancelCountdown(s.Id)
	s.CountdownGen++ // invalidate an already-fired callback still in the queue
	s.Phase = internal.PhaseLobby

	log.Printf("[Hub.cancelCountdown] session=%s reverted to lobby", s.Id)
	h.broadcast(s, envelope(internal.EventCancelCountdown, internal.CountdownData{GameID: s.Id}))
}

// handleCountdownElapsed fires on the loop when the countdown timer expires.
// State may have moved since scheduling, so everything is re-checked here.
func (h *Hub) handleCountdownElapsed(sessionID string, gen int) {
	s := h.registry.Get(sessionID)
	if s == nil {
		log.Printf("[Hub.handleCountdownElapsed] session=%s already evicted, ignoring", sessionID)
		return
	}
	if s.Phase != internal.PhaseStarting || s.CountdownGen != gen {
		log.Printf("[Hub.handleCountdownElapsed] session=%s stale fire (phase=%s gen=%d want=%d), ignoring",
			sessionID, s.Phase, gen, s.CountdownGen)
		return
	}
	h.startGame(s)
}

// handleStartForReal is the host's explicit start confirmation, the race
// guard against duplicate triggers. Non-host issuers are ignored outright.
func (h *Hub) handleStartForReal(connID, gameID string) {
	s, p, err := h.sessionFor(connID, gameID)
	if err != nil {
		log.Printf("[Hub.handleStartForReal] conn=%s game=%s: %v", connID, gameID, err)
		return
	}
	if !p.IsHost {
		log.Printf("[Hub.handleStartForReal] session=%s conn=%s is not host, ignoring", s.Id, connID)
		return
	}
	if s.Phase != internal.PhaseStarting {
		// Already playing means the countdown won the race: a no-op, not an
		// error.
		log.Printf("[Hub.handleStartForReal] session=%s phase=%s, nothing to do", s.Id, s.Phase)
		return
	}
	h.timers.cancelCountdown(s.Id)
	h.startGame(s)
}

// startGame flips the started flag exactly once, rolls the first round's
// target type and broadcasts the full roster. A second start request against
// a started session is a no-op.
func (h *Hub) startGame(s *internal.Session) {
	if s.GameStarted {
		log.Printf("[Hub.startGame] session=%s already started, ignoring duplicate trigger", s.Id)
		return
	}
	s.GameStarted = true
	s.Phase = internal.PhasePlaying
	s.RoundNumber = 1
	s.TargetType = utils.PickTargetType(h.rng)

	log.Printf("[Hub.startGame] session=%s round=1 target=%s players=%d",
		s.Id, s.TargetType, len(s.Players))

	h.broadcast(s, envelope(internal.EventGameStart, internal.GameStartData{
		GameID:      s.Id,
		RoundNumber: s.RoundNumber,
		MaxRounds:   s.MaxRounds,
		TargetType:  s.TargetType,
		Players:     s.Roster(),
	}))
}

// =============================================================================
// SESSION LIFECYCLE - DISCONNECT, HOST MIGRATION, EVICTION
// =============================================================================

// handleDisconnect marks the player disconnected (never removed - scores and
// final standings still include them), migrates the host role if needed, and
// evicts the session the moment nobody is left connected. The directory
// entry is erased only after all of that, because the session-side logic
// needs the association.
func (h *Hub) handleDisconnect(connID string) {
	m, known := h.directory.Lookup(connID)
	if known && m.SessionID != "" {
		if s := h.registry.Get(m.SessionID); s != nil {
			h.disconnectFromSession(s, connID)
		}
	}

	h.directory.Remove(connID)
	if out, ok := h.clients[connID]; ok {
		out.close()
		delete(h.clients, connID)
	}
	log.Printf("[Hub.handleDisconnect] conn=%s detached (%d connections)", connID, len(h.clients))
}

func (h *Hub) disconnectFromSession(s *internal.Session, connID string) {
	p := s.PlayerByConn(connID)
	if p == nil || !p.IsConnected {
		return
	}

	wasHost := p.IsHost
	p.IsConnected = false
	p.IsHost = false
	p.IsReady = false

	log.Printf("[Hub.disconnectFromSession] session=%s conn=%s seat=%d disconnected (host=%t, %d still connected)",
		s.Id, connID, p.Seat, wasHost, s.ConnectedCount())

	if s.ConnectedCount() == 0 {
		// Last connected player gone: evict immediately regardless of
		// lifecycle state or pending grace timers.
		h.evict(s)
		return
	}

	var newHostID string
	if wasHost {
		successor := s.FirstConnected()
		successor.IsHost = true
		newHostID = successor.ConnID
		h.sendTo(successor.ConnID, envelope(internal.EventPromoteToHost, internal.PromoteToHostData{
			GameID: s.Id,
		}))
		log.Printf("[Hub.disconnectFromSession] session=%s host migrated to seat=%d conn=%s",
			s.Id, successor.Seat, successor.ConnID)
	}

	h.broadcast(s, envelope(internal.EventPlayerDisconnected, internal.PlayerDisconnectedData{
		PlayerID:    connID,
		NewHostID:   newHostID,
		PlayerCount: s.ConnectedCount(),
	}))
	h.broadcast(s, envelope(internal.EventPlayersUpdated, internal.PlayersUpdatedData{
		Players: s.Roster(),
	}))

	// A departing vote can complete the remaining players' readiness.
	if s.Phase == internal.PhaseLobby && s.CanStart() && s.AreAllConnectedReady() {
		h.beginCountdown(s)
	}
}

// handleGraceElapsed tears the session down after clients had their chance
// to render the results. Guarded against state changes since scheduling.
func (h *Hub) handleGraceElapsed(sessionID string) {
	s := h.registry.Get(sessionID)
	if s == nil {
		return
	}
	if s.Phase != internal.PhaseGameOver {
		log.Printf("[Hub.handleGraceElapsed] session=%s phase=%s, stale fire ignored", sessionID, s.Phase)
		return
	}
	log.Printf("[Hub.handleGraceElapsed] session=%s grace elapsed, tearing down", sessionID)
	h.evict(s)
}

// evict removes the session from its registry and releases every timer and
// membership attached to it.
func (h *Hub) evict(s *internal.Session) {
	h.timers.cancelAll(s.Id)
	for _, p := range s.Players {
		h.directory.Clear(p.ConnID)
	}
	h.registry.Delete(s.Id)
	log.Printf("[Hub.evict] session=%s removed from registry", s.Id)
}

// archive hands the finished game to the result store, off-loop so a slow
// database never delays the grace teardown.
func (h *Hub) archive(result internal.GameResult) {
	if h.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.store.SaveResult(ctx, result); err != nil {
			log.Printf("[Hub.archive] session=%s failed to archive result: %v", result.SessionID, err)
		}
	}()
}
