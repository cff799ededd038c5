package game

import (
	"log"

	"github.com/tapquest/tapquest-backend/internal"
	"github.com/tapquest/tapquest-backend/internal/utils"
)

// =============================================================================
// GAME FLOW - ROUND PROGRESSION
// =============================================================================

// handleRoundComplete advances the round on the host's signal. Non-host
// issuers are ignored, not merely deprioritized, so a non-authoritative
// client cannot skip rounds.
func (h *Hub) handleRoundComplete(connID, gameID string) {
	s, p, err := h.sessionFor(connID, gameID)
	if err != nil {
		log.Printf("[Hub.handleRoundComplete] conn=%s game=%s: %v", connID, gameID, err)
		return
	}
	if !p.IsHost {
		log.Printf("[Hub.handleRoundComplete] session=%s conn=%s is not host, ignoring", s.Id, connID)
		return
	}
	if s.Phase != internal.PhasePlaying {
		log.Printf("[Hub.handleRoundComplete] session=%s phase=%s, ignoring", s.Id, s.Phase)
		return
	}

	s.Phase = internal.PhaseRoundTransition
	s.RoundNumber++

	if s.RoundNumber > s.MaxRounds {
		h.finishGame(s)
		return
	}

	// Scores persist across rounds; only the shared target re-rolls.
	s.TargetType = utils.PickTargetType(h.rng)
	s.Phase = internal.PhasePlaying

	log.Printf("[Hub.handleRoundComplete] session=%s round=%d target=%s", s.Id, s.RoundNumber, s.TargetType)
	h.broadcast(s, envelope(internal.EventStartNextRound, internal.NextRoundData{
		GameID:      s.Id,
		RoundNumber: s.RoundNumber,
		TargetType:  s.TargetType,
	}))
}

// finishGame runs the game-over transition exactly once: final standings,
// winner selection, one gameOver broadcast, the archive write and the grace
// timer that will evict the session.
func (h *Hub) finishGame(s *internal.Session) {
	s.Phase = internal.PhaseGameOver
	s.RoundNumber = s.MaxRounds + 1 // pending cleanup

	standings := computeStandings(s)
	winnerID := h.pickWinner(s)

	log.Printf("[Hub.finishGame] session=%s winner=%s", s.Id, winnerID)
	h.broadcast(s, envelope(internal.EventGameOver, internal.GameOverData{
		GameID:    s.Id,
		WinnerID:  winnerID,
		Standings: standings,
	}))

	results := make([]internal.PlayerResult, 0, len(s.Players))
	for _, p := range s.Players {
		results = append(results, internal.PlayerResult{
			PlayerID:  p.ConnID,
			Seat:      p.Seat,
			Character: p.Character,
			Score:     p.Score,
			Connected: p.IsConnected,
		})
	}
	h.archive(internal.GameResult{
		SessionID:    s.Id,
		Visibility:   s.Visibility,
		RoundsPlayed: s.MaxRounds,
		WinnerID:     winnerID,
		FinishedAt:   h.now(),
		Players:      results,
	})

	h.timers.scheduleGrace(h, s.Id, h.grace)
}
