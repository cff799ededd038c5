package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapquest/tapquest-backend/internal"
)

func TestReadyVoteStartsCountdown(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2")

	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	require.Equal(t, internal.PhaseLobby, fx.hub.registry.Get(gameID).Phase)

	states := fx.outs["c2"].lastOfType(t, internal.EventReadyStatesUpdated).Data.(internal.ReadyStatesUpdatedData)
	require.Equal(t, 1, states.ReadyCount)
	require.False(t, states.CanStart)

	fx.send("c2", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	require.Equal(t, internal.PhaseStarting, fx.hub.registry.Get(gameID).Phase)
	require.Equal(t, internal.CountdownDuration, fx.timers[len(fx.timers)-1].d)

	countdown := fx.outs["c1"].lastOfType(t, internal.EventStartCountdown).Data.(internal.CountdownData)
	require.Equal(t, gameID, countdown.GameID)
}

func TestSinglePlayerReadyDoesNotStart(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1")

	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})

	require.Equal(t, internal.PhaseLobby, fx.hub.registry.Get(gameID).Phase)
	require.Empty(t, fx.outs["c1"].ofType(internal.EventStartCountdown))
}

func TestRepeatedReadyVoteIsNoOp(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2")

	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	before := len(fx.outs["c2"].ofType(internal.EventReadyStatesUpdated))
	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})

	require.Len(t, fx.outs["c2"].ofType(internal.EventReadyStatesUpdated), before)
}

func TestUnreadyDuringCountdownCancelsIt(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2")
	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	fx.send("c2", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	require.Equal(t, internal.PhaseStarting, fx.hub.registry.Get(gameID).Phase)

	fx.send("c2", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: false})

	s := fx.hub.registry.Get(gameID)
	require.Equal(t, internal.PhaseLobby, s.Phase)
	require.False(t, s.GameStarted)
	cancelled := fx.outs["c1"].lastOfType(t, internal.EventCancelCountdown).Data.(internal.CountdownData)
	require.Equal(t, gameID, cancelled.GameID)

	// The original timer may still fire; its generation is stale now.
	fx.fireLastTimer()
	require.Equal(t, internal.PhaseLobby, fx.hub.registry.Get(gameID).Phase)
	require.Empty(t, fx.outs["c1"].ofType(internal.EventGameStart))
}

func TestCountdownElapsedStartsGame(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2")
	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	fx.send("c2", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})

	fx.fireLastTimer()

	s := fx.hub.registry.Get(gameID)
	require.Equal(t, internal.PhasePlaying, s.Phase)
	require.True(t, s.GameStarted)
	require.Equal(t, 1, s.RoundNumber)
	require.NotEmpty(t, s.TargetType)

	for _, id := range []string{"c1", "c2"} {
		start := fx.outs[id].lastOfType(t, internal.EventGameStart).Data.(internal.GameStartData)
		require.Equal(t, gameID, start.GameID)
		require.Equal(t, 1, start.RoundNumber)
		require.Equal(t, internal.MaxRounds, start.MaxRounds)
		require.Equal(t, s.TargetType, start.TargetType)
		require.Len(t, start.Players, 2)
	}
}

func TestStartGameForRealRequiresHost(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2")
	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	fx.send("c2", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})

	fx.send("c2", internal.EventStartGameForReal, internal.StartGameForRealData{GameID: gameID})
	require.Equal(t, internal.PhaseStarting, fx.hub.registry.Get(gameID).Phase)

	fx.send("c1", internal.EventStartGameForReal, internal.StartGameForRealData{GameID: gameID})
	require.Equal(t, internal.PhasePlaying, fx.hub.registry.Get(gameID).Phase)
}

func TestStartIsIdempotentAcrossTriggers(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2")
	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	fx.send("c2", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})

	// Host confirmation wins the race; the countdown timer fires anyway.
	fx.send("c1", internal.EventStartGameForReal, internal.StartGameForRealData{GameID: gameID})
	fx.fireLastTimer()

	require.Len(t, fx.outs["c1"].ofType(internal.EventGameStart), 1)
	require.Len(t, fx.outs["c2"].ofType(internal.EventGameStart), 1)
}

func TestCharacterMutableUntilStart(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.startedGame("c1", "c2")

	s := fx.hub.registry.Get(gameID)
	before := s.PlayerByConn("c1").Character
	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{
		GameID: gameID, Character: "mushroom", Ready: true,
	})
	require.Equal(t, before, s.PlayerByConn("c1").Character)
}

func TestHostMigrationOnDisconnect(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2", "c3")

	fx.disconnect("c1")

	s := fx.hub.registry.Get(gameID)
	require.NotNil(t, s)
	require.False(t, s.PlayerByConn("c1").IsConnected)

	successor := s.PlayerByConn("c2")
	require.True(t, successor.IsHost)
	require.Equal(t, 2, successor.Seat)

	promote := fx.outs["c2"].lastOfType(t, internal.EventPromoteToHost).Data.(internal.PromoteToHostData)
	require.Equal(t, gameID, promote.GameID)
	require.Empty(t, fx.outs["c3"].ofType(internal.EventPromoteToHost))

	gone := fx.outs["c3"].lastOfType(t, internal.EventPlayerDisconnected).Data.(internal.PlayerDisconnectedData)
	require.Equal(t, "c1", gone.PlayerID)
	require.Equal(t, "c2", gone.NewHostID)
	require.Equal(t, 2, gone.PlayerCount)
}

func TestHostMigrationPicksLowestConnectedSeat(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2", "c3")

	fx.disconnect("c2")
	fx.disconnect("c1")

	s := fx.hub.registry.Get(gameID)
	require.True(t, s.PlayerByConn("c3").IsHost)
	promote := fx.outs["c3"].lastOfType(t, internal.EventPromoteToHost).Data.(internal.PromoteToHostData)
	require.Equal(t, gameID, promote.GameID)
}

func TestLastDisconnectEvictsImmediately(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2")

	fx.disconnect("c1")
	require.NotNil(t, fx.hub.registry.Get(gameID))

	fx.disconnect("c2")
	require.Nil(t, fx.hub.registry.Get(gameID))
	require.Zero(t, fx.hub.directory.Count())
}

func TestLastDisconnectDuringGameOverSkipsGrace(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.startedGame("c1", "c2")
	for i := 0; i < internal.MaxRounds; i++ {
		fx.send("c1", internal.EventRoundComplete, internal.RoundCompleteData{GameID: gameID})
	}
	require.Equal(t, internal.PhaseGameOver, fx.hub.registry.Get(gameID).Phase)

	fx.disconnect("c1")
	fx.disconnect("c2")

	// Evicted ahead of the grace timer; its late fire is a no-op.
	require.Nil(t, fx.hub.registry.Get(gameID))
	fx.fireLastTimer()
	require.Nil(t, fx.hub.registry.Get(gameID))
}

func TestDisconnectCompletesReadinessVote(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.quickPlayGame("c1", "c2", "c3")
	fx.send("c1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	fx.send("c2", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	require.Equal(t, internal.PhaseLobby, fx.hub.registry.Get(gameID).Phase)

	// The only unready player leaving makes everyone still connected ready.
	fx.disconnect("c3")

	require.Equal(t, internal.PhaseStarting, fx.hub.registry.Get(gameID).Phase)
}

func TestGraceElapsedTearsDownSession(t *testing.T) {
	fx := newFixture(t)
	gameID := fx.startedGame("c1", "c2")
	for i := 0; i < internal.MaxRounds; i++ {
		fx.send("c1", internal.EventRoundComplete, internal.RoundCompleteData{GameID: gameID})
	}
	require.Equal(t, internal.PhaseGameOver, fx.hub.registry.Get(gameID).Phase)
	require.Equal(t, internal.GameOverGrace, fx.timers[len(fx.timers)-1].d)

	fx.fireLastTimer()

	require.Nil(t, fx.hub.registry.Get(gameID))
	// Players stay connected and matchmakable.
	m, ok := fx.hub.directory.Lookup("c1")
	require.True(t, ok)
	require.Empty(t, m.SessionID)

	fx.send("c1", internal.EventQuickPlay, internal.QuickPlayData{Character: "balloon"})
	require.NotEmpty(t, fx.outs["c1"].ofType(internal.EventGameCreated))
}

func TestCancelledCountdownReopensFullSession(t *testing.T) {
	fx := newFixture(t)
	host := fx.connect("h1", "lantern")
	fx.send("h1", internal.EventCreatePrivateGame, internal.CreatePrivateGameData{Character: "lantern"})
	gameID := host.lastOfType(t, internal.EventPrivateGameCreated).Data.(internal.GameCreatedData).GameID
	for _, id := range []string{"g1", "g2", "g3"} {
		fx.connect(id, "gem")
		fx.send(id, internal.EventJoinPrivateGame, internal.JoinPrivateGameData{GameID: gameID, Character: "gem"})
	}
	require.Equal(t, internal.PhaseStarting, fx.hub.registry.Get(gameID).Phase)

	fx.send("g1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: true})
	fx.send("g1", internal.EventPlayerReady, internal.PlayerReadyData{GameID: gameID, Ready: false})
	require.Equal(t, internal.PhaseLobby, fx.hub.registry.Get(gameID).Phase)

	// Back in the lobby but still full, so a join is refused for capacity
	// rather than for having started.
	late := fx.connect("g4", "acorn")
	fx.send("g4", internal.EventJoinPrivateGame, internal.JoinPrivateGameData{GameID: gameID, Character: "acorn"})
	require.Empty(t, late.ofType(internal.EventGameJoined))
	msg := late.lastOfType(t, internal.EventGameError)
	require.Equal(t, internal.ErrFull.Error(), msg.Data.(internal.GameErrorData).Message)
}
