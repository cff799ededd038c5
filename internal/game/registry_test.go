package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tapquest/tapquest-backend/internal"
)

func TestRegistryCreateAssignsUniqueCodes(t *testing.T) {
	r := NewRegistry(internal.MaxSessionAge)
	now := time.Now()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		s := r.Create(internal.VisibilityPublic, now)
		require.Len(t, s.Id, internal.SessionCodeLength)
		require.False(t, seen[s.Id], "duplicate code %s", s.Id)
		seen[s.Id] = true

		require.Equal(t, internal.PhaseLobby, s.Phase)
		require.Equal(t, 1, s.RoundNumber)
		require.Equal(t, internal.MaxRounds, s.MaxRounds)
		require.Empty(t, s.Players)
	}
}

func TestRegistryGetResolvesBothPools(t *testing.T) {
	r := NewRegistry(internal.MaxSessionAge)
	now := time.Now()
	pub := r.Create(internal.VisibilityPublic, now)
	priv := r.Create(internal.VisibilityPrivate, now)

	require.Same(t, pub, r.Get(pub.Id))
	require.Same(t, priv, r.Get(priv.Id))
	require.Nil(t, r.Get("MISSING"))

	require.Same(t, priv, r.GetPrivate(priv.Id))
	require.Nil(t, r.GetPrivate(pub.Id), "public session must not resolve via invite code")
}

func TestRegistryPublicSessionsExcludesPrivate(t *testing.T) {
	r := NewRegistry(internal.MaxSessionAge)
	now := time.Now()
	pub := r.Create(internal.VisibilityPublic, now)
	r.Create(internal.VisibilityPrivate, now)

	sessions := r.PublicSessions()
	require.Len(t, sessions, 1)
	require.Same(t, pub, sessions[0])
}

func TestRegistrySweepEvictsAgedAndEmptySessions(t *testing.T) {
	r := NewRegistry(internal.MaxSessionAge)
	base := time.Now()

	aged := r.Create(internal.VisibilityPublic, base)
	aged.Players = append(aged.Players, &internal.Player{ConnID: "a", Seat: 1, IsConnected: true})

	empty := r.Create(internal.VisibilityPrivate, base.Add(20*time.Minute))

	fresh := r.Create(internal.VisibilityPublic, base.Add(25*time.Minute))
	fresh.Players = append(fresh.Players, &internal.Player{ConnID: "b", Seat: 1, IsConnected: true})

	evicted := r.Sweep(base.Add(internal.MaxSessionAge + time.Second))

	ids := make(map[string]bool)
	for _, s := range evicted {
		ids[s.Id] = true
	}
	require.True(t, ids[aged.Id], "aged-out session survives sweep")
	require.True(t, ids[empty.Id], "empty-roster session survives sweep")
	require.False(t, ids[fresh.Id])
	require.Nil(t, r.Get(aged.Id))
	require.Same(t, fresh, r.Get(fresh.Id))
}

func TestRegistryDeleteAndCounts(t *testing.T) {
	r := NewRegistry(internal.MaxSessionAge)
	now := time.Now()
	pub := r.Create(internal.VisibilityPublic, now)
	r.Create(internal.VisibilityPrivate, now)

	pubCount, privCount := r.Counts()
	require.Equal(t, 1, pubCount)
	require.Equal(t, 1, privCount)

	r.Delete(pub.Id)
	require.Nil(t, r.Get(pub.Id))
	pubCount, privCount = r.Counts()
	require.Zero(t, pubCount)
	require.Equal(t, 1, privCount)
}
