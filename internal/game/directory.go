package game

import "sync"

// =============================================================================
// CONNECTION DIRECTORY
// =============================================================================

// Membership is what the directory knows about a connection: which session
// it currently belongs to (empty until matched) and the character it picked.
type Membership struct {
	SessionID string
	Character string
}

// Directory maps transport connection identities to session membership,
// keeping the session model free of any transport dependency. Entries are
// created on connect and removed on disconnect only after the lifecycle has
// had its chance to act on the departing player.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]Membership
}

func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]Membership)}
}

func (d *Directory) Bind(connID, character string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[connID] = Membership{Character: character}
}

// Assign records the session a connection was matched into, along with the
// character it joined as.
func (d *Directory) Assign(connID, sessionID, character string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[connID] = Membership{SessionID: sessionID, Character: character}
}

// Clear drops the session association but keeps the connection known, so a
// player whose game ended can matchmake again on the same connection.
func (d *Directory) Clear(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.entries[connID]; ok {
		m.SessionID = ""
		d.entries[connID] = m
	}
}

func (d *Directory) Lookup(connID string) (Membership, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.entries[connID]
	return m, ok
}

func (d *Directory) Remove(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, connID)
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
