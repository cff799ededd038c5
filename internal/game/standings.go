package game

import (
	"slices"

	"github.com/tapquest/tapquest-backend/internal"
)

// computeStandings compiles the final ranking from a finished game. Every
// roster entry appears, disconnected players included; ties share a score
// but keep seat order within the slice.
func computeStandings(s *internal.Session) []internal.StandingData {
	standings := make([]internal.StandingData, 0, len(s.Players))
	for _, p := range s.Players {
		standings = append(standings, internal.StandingData{
			PlayerID:    p.ConnID,
			Seat:        p.Seat,
			Character:   p.Character,
			Score:       p.Score,
			IsConnected: p.IsConnected,
		})
	}

	slices.SortStableFunc(standings, func(a, b internal.StandingData) int {
		return b.Score - a.Score
	})
	for idx := range standings {
		standings[idx].Position = idx + 1
	}
	return standings
}

// pickWinner returns the player with the strictly highest score. Exact ties
// at the maximum are broken by an unweighted random pick among the tied
// leaders; with two leaders that is a coin flip. See DESIGN.md for why this
// non-determinism is preserved.
func (h *Hub) pickWinner(s *internal.Session) string {
	if len(s.Players) == 0 {
		return ""
	}

	best := s.Players[0].Score
	for _, p := range s.Players[1:] {
		if p.Score > best {
			best = p.Score
		}
	}

	var leaders []*internal.Player
	for _, p := range s.Players {
		if p.Score == best {
			leaders = append(leaders, p)
		}
	}

	if len(leaders) == 1 {
		return leaders[0].ConnID
	}
	return leaders[h.rng.IntN(len(leaders))].ConnID
}
