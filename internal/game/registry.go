package game

import (
	"log"
	"sync"
	"time"

	"github.com/tapquest/tapquest-backend/internal"
	"github.com/tapquest/tapquest-backend/internal/utils"
)

// =============================================================================
// SESSION REGISTRY
// =============================================================================

// Registry owns every live session, partitioned into the public matchmaking
// pool and the private invite-code pool. All other components look sessions
// up by id for every call; nobody holds a durable *Session across an event.
//
// The hub goroutine is the only mutator of session contents. The registry's
// own maps carry a mutex so HTTP handlers can read counts concurrently.
type Registry struct {
	mu      sync.RWMutex
	public  map[string]*internal.Session
	private map[string]*internal.Session
	maxAge  time.Duration
}

func NewRegistry(maxAge time.Duration) *Registry {
	return &Registry{
		public:  make(map[string]*internal.Session),
		private: make(map[string]*internal.Session),
		maxAge:  maxAge,
	}
}

// Create registers a fresh lobby-phase session under a collision-free code.
func (r *Registry) Create(visibility internal.Visibility, now time.Time) *internal.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	for {
		id = utils.GenerateCode(internal.SessionCodeLength)
		if _, taken := r.public[id]; taken {
			continue
		}
		if _, taken := r.private[id]; taken {
			continue
		}
		break
	}

	session := &internal.Session{
		Id:          id,
		Visibility:  visibility,
		Phase:       internal.PhaseLobby,
		Players:     make([]*internal.Player, 0, internal.MaxPlayersPerSession),
		RoundNumber: 1,
		MaxRounds:   internal.MaxRounds,
		CreatedAt:   now,
	}

	r.pool(visibility)[id] = session
	log.Printf("[Registry.Create] session=%s visibility=%s registered", id, visibility)
	return session
}

// Get resolves an id across both pools. A nil result means the reference is
// stale or was never valid.
func (r *Registry) Get(id string) *internal.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.public[id]; ok {
		return s
	}
	return r.private[id]
}

// GetPrivate resolves an id against the private pool only, the lookup used
// by invite-code joins.
func (r *Registry) GetPrivate(id string) *internal.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.private[id]
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.public, id)
	delete(r.private, id)
}

// PublicSessions snapshots the matchmaking pool for a first-fit scan.
func (r *Registry) PublicSessions() []*internal.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*internal.Session, 0, len(r.public))
	for _, s := range r.public {
		sessions = append(sessions, s)
	}
	return sessions
}

// Sweep evicts every session that outlived the maximum age or has an empty
// roster, and returns the evicted sessions so the caller can release timers
// and directory entries. Invoked periodically and eagerly before every
// matchmaking scan, so a stale session is never handed out.
func (r *Registry) Sweep(now time.Time) []*internal.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []*internal.Session
	for _, pool := range []map[string]*internal.Session{r.public, r.private} {
		for id, s := range pool {
			if now.Sub(s.CreatedAt) > r.maxAge || len(s.Players) == 0 {
				delete(pool, id)
				evicted = append(evicted, s)
				log.Printf("[Registry.Sweep] session=%s visibility=%s evicted (age=%s players=%d)",
					id, s.Visibility, now.Sub(s.CreatedAt).Truncate(time.Second), len(s.Players))
			}
		}
	}
	return evicted
}

func (r *Registry) Counts() (publicCount, privateCount int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.public), len(r.private)
}

func (r *Registry) pool(visibility internal.Visibility) map[string]*internal.Session {
	if visibility == internal.VisibilityPrivate {
		return r.private
	}
	return r.public
}
