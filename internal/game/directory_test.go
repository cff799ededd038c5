package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectoryBindAssignClear(t *testing.T) {
	d := NewDirectory()

	d.Bind("c1", "balloon")
	m, ok := d.Lookup("c1")
	require.True(t, ok)
	require.Empty(t, m.SessionID)
	require.Equal(t, "balloon", m.Character)

	d.Assign("c1", "GAME42", "mushroom")
	m, _ = d.Lookup("c1")
	require.Equal(t, "GAME42", m.SessionID)
	require.Equal(t, "mushroom", m.Character)

	// Clear drops the session but keeps the connection known.
	d.Clear("c1")
	m, ok = d.Lookup("c1")
	require.True(t, ok)
	require.Empty(t, m.SessionID)
	require.Equal(t, "mushroom", m.Character)
}

func TestDirectoryClearUnknownConnIsNoOp(t *testing.T) {
	d := NewDirectory()
	d.Clear("ghost")
	_, ok := d.Lookup("ghost")
	require.False(t, ok)
}

func TestDirectoryRemoveAndCount(t *testing.T) {
	d := NewDirectory()
	d.Bind("c1", "balloon")
	d.Bind("c2", "gem")
	require.Equal(t, 2, d.Count())

	d.Remove("c1")
	require.Equal(t, 1, d.Count())
	_, ok := d.Lookup("c1")
	require.False(t, ok)
	_, ok = d.Lookup("c2")
	require.True(t, ok)
}
