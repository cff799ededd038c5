package game

import (
	"errors"
	"log"

	"github.com/tapquest/tapquest-backend/internal"
)

// =============================================================================
// MATCHMAKER
// =============================================================================

// findOpenSession scans the public pool for a session that can accept a new
// player. Selection is first-fit in registry iteration order; no balancing
// across sessions, no preference by fill level.
func (h *Hub) findOpenSession() *internal.Session {
	for _, s := range h.registry.PublicSessions() {
		if s.Phase == internal.PhaseLobby && !s.IsFull() {
			log.Printf("[Hub.findOpenSession] session=%s joinable with %d player(s)", s.Id, len(s.Players))
			return s
		}
	}
	log.Println("[Hub.findOpenSession] no joinable session")
	return nil
}

func (h *Hub) handleQuickPlay(connID, character string) {
	// Eager sweep so a stale session can never be handed out.
	h.handleSweep()

	if m, ok := h.directory.Lookup(connID); ok && m.SessionID != "" {
		h.sendError(connID, "already in a game")
		return
	}

	session := h.findOpenSession()
	created := false
	if session == nil {
		session = h.registry.Create(internal.VisibilityPublic, h.now())
		created = true
	}

	if err := h.joinSession(session, connID, character); err != nil {
		// A first-fit hit can't fail these checks; only a created-then-full
		// race could, and the loop serializes joins, so surface and stop.
		h.sendError(connID, err.Error())
		return
	}

	if created {
		h.sendTo(connID, envelope(internal.EventGameCreated, internal.GameCreatedData{
			GameID: session.Id,
			IsHost: true,
			Seed:   session.Id,
		}))
	}
}

func (h *Hub) handleCreatePrivate(connID, character string) {
	h.handleSweep()

	if m, ok := h.directory.Lookup(connID); ok && m.SessionID != "" {
		h.sendError(connID, "already in a game")
		return
	}

	session := h.registry.Create(internal.VisibilityPrivate, h.now())
	if err := h.joinSession(session, connID, character); err != nil {
		h.sendError(connID, err.Error())
		return
	}

	h.sendTo(connID, envelope(internal.EventPrivateGameCreated, internal.GameCreatedData{
		GameID: session.Id,
		IsHost: true,
		Seed:   session.Id,
	}))
}

func (h *Hub) handleJoinPrivate(connID, gameID, character string) {
	h.handleSweep()

	if m, ok := h.directory.Lookup(connID); ok && m.SessionID != "" {
		h.sendError(connID, "already in a game")
		return
	}

	session := h.registry.GetPrivate(gameID)
	if session == nil {
		log.Printf("[Hub.handleJoinPrivate] conn=%s unknown code %q", connID, gameID)
		h.sendError(connID, internal.ErrNotFound.Error())
		return
	}

	if err := h.joinSession(session, connID, character); err != nil {
		h.sendError(connID, err.Error())
	}
}

// joinSession seats a player, fans out the join events and applies the
// fill-to-capacity auto-start rule. It is the single join path for public
// and private sessions alike.
func (h *Hub) joinSession(s *internal.Session, connID, character string) error {
	if s.Phase != internal.PhaseLobby {
		return internal.ErrAlreadyStarted
	}
	if s.IsFull() {
		return internal.ErrFull
	}

	player := &internal.Player{
		ConnID:      connID,
		Seat:        len(s.Players) + 1,
		Character:   character,
		IsConnected: true,
		IsHost:      s.Host() == nil,
		JoinedAt:    h.now(),
	}
	s.Players = append(s.Players, player)
	h.directory.Assign(connID, s.Id, character)

	log.Printf("[Hub.joinSession] session=%s conn=%s seat=%d host=%t (%d/%d players)",
		s.Id, connID, player.Seat, player.IsHost, len(s.Players), internal.MaxPlayersPerSession)

	h.sendTo(connID, envelope(internal.EventGameJoined, internal.GameJoinedData{
		GameID:  s.Id,
		You:     player.Snapshot(),
		Players: s.Roster(),
	}))
	h.broadcastExcept(s, envelope(internal.EventPlayerJoined, internal.PlayerJoinedData{
		Player:      player.Snapshot(),
		PlayerCount: len(s.Players),
	}), connID)
	h.broadcast(s, envelope(internal.EventPlayersUpdated, internal.PlayersUpdatedData{
		Players: s.Roster(),
	}))

	// Alternative start trigger: filling the last seat starts the countdown
	// without waiting for a readiness vote.
	if s.IsFull() {
		log.Printf("[Hub.joinSession] session=%s filled to capacity, auto-starting", s.Id)
		h.beginCountdown(s)
	}
	return nil
}

// sessionFor resolves a client-supplied game id against the registry and the
// connection's own membership. Mismatches and evicted ids are stale
// references: logged, never fatal.
func (h *Hub) sessionFor(connID, gameID string) (*internal.Session, *internal.Player, error) {
	s := h.registry.Get(gameID)
	if s == nil {
		return nil, nil, internal.ErrStaleReference
	}
	p := s.PlayerByConn(connID)
	if p == nil {
		return nil, nil, internal.ErrStaleReference
	}
	return s, p, nil
}

// isStale reports whether the error is the silently-ignored kind.
func isStale(err error) bool {
	return errors.Is(err, internal.ErrStaleReference)
}
