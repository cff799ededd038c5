package internal

// Read helpers over the session roster. None of these mutate; all mutation
// happens in the game package's event handlers.

func (s *Session) PlayerByConn(connID string) *Player {
	for _, p := range s.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (s *Session) PlayerBySeat(seat int) *Player {
	if seat < 1 || seat > len(s.Players) {
		return nil
	}
	return s.Players[seat-1]
}

// ConnectedCount counts players whose connectivity flag is still true.
// Disconnected players stay on the roster and are excluded here only.
func (s *Session) ConnectedCount() int {
	count := 0
	for _, p := range s.Players {
		if p.IsConnected {
			count++
		}
	}
	return count
}

func (s *Session) IsFull() bool {
	return len(s.Players) >= MaxPlayersPerSession
}

func (s *Session) CanStart() bool {
	return s.ConnectedCount() >= MinPlayersToStart
}

// AreAllConnectedReady reports whether every currently-connected player has
// flagged ready. Disconnected players do not block the vote.
func (s *Session) AreAllConnectedReady() bool {
	for _, p := range s.Players {
		if p.IsConnected && !p.IsReady {
			return false
		}
	}
	return true
}

func (s *Session) Host() *Player {
	for _, p := range s.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// FirstConnected returns the connected player with the lowest seat, the
// migration target when the host drops.
func (s *Session) FirstConnected() *Player {
	for _, p := range s.Players {
		if p.IsConnected {
			return p
		}
	}
	return nil
}

func (s *Session) Roster() []PlayerSnapshot {
	roster := make([]PlayerSnapshot, 0, len(s.Players))
	for _, p := range s.Players {
		roster = append(roster, p.Snapshot())
	}
	return roster
}

func (s *Session) ReadyStates() map[string]bool {
	states := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		states[p.ConnID] = p.IsReady
	}
	return states
}
