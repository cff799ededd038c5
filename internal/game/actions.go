package game

import (
	"fmt"
	"log"

	"github.com/tapquest/tapquest-backend/internal"
)

// =============================================================================
// IN-ROUND ACTIONS
// =============================================================================

// handlePlayerAction applies a scoring tap and relays it to the rest of the
// session for visual sync. The point value comes from the client and is
// applied as reported inside [0, MaxActionPoints]; the server does not check
// it against game rules. That trust boundary is deliberate - see DESIGN.md.
func (h *Hub) handlePlayerAction(connID string, d internal.PlayerActionData) {
	s, p, err := h.sessionFor(connID, d.GameID)
	if err != nil {
		log.Printf("[Hub.handlePlayerAction] conn=%s game=%s: %v", connID, d.GameID, err)
		return
	}

	if s.Phase != internal.PhasePlaying {
		h.sendError(connID, fmt.Sprintf("actions not accepted in phase %s", s.Phase))
		return
	}

	if d.Points < 0 || d.Points > internal.MaxActionPoints {
		log.Printf("[Hub.handlePlayerAction] session=%s conn=%s rejected points=%d", s.Id, connID, d.Points)
		h.sendError(connID, "invalid point value")
		return
	}

	p.Score += d.Points
	log.Printf("[Hub.handlePlayerAction] session=%s conn=%s action=%s points=%d score=%d",
		s.Id, connID, d.Action, d.Points, p.Score)

	h.broadcastExcept(s, envelope(internal.EventActionRelay, internal.ActionRelayData{
		PlayerID: connID,
		Action:   d.Action,
		Points:   d.Points,
		Powerup:  d.Powerup,
	}), connID)
}
