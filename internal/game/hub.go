package game

import (
	"context"
	"encoding/json"
	"log"
	"math/rand/v2"
	"time"

	"github.com/tapquest/tapquest-backend/internal"
)

// =============================================================================
// HUB - SINGLE-THREADED EVENT LOOP
// =============================================================================

// outbox is the write side of one connection. enqueue must never block; a
// full queue drops the message (at-most-once delivery, slow clients lose).
type outbox interface {
	enqueue(msg internal.Message[any]) bool
	close()
}

// ResultArchiver records finished games. Implementations must tolerate being
// called concurrently; the hub invokes it off-loop so archival latency never
// delays eviction.
type ResultArchiver interface {
	SaveResult(ctx context.Context, result internal.GameResult) error
}

type hubEvent interface{}

type connectEvent struct {
	connID    string
	character string
	out       outbox
}

type disconnectEvent struct {
	connID string
}

type inboundEvent struct {
	connID  string
	msgType string
	data    json.RawMessage
}

type countdownElapsed struct {
	sessionID string
	gen       int
}

type graceElapsed struct {
	sessionID string
}

// Options configures a Hub. Zero values fall back to the defaults in
// internal; tests inject short durations, a seeded Rand and a fake AfterFunc.
type Options struct {
	Store         ResultArchiver
	Rand          *rand.Rand
	Countdown     time.Duration
	Grace         time.Duration
	MaxSessionAge time.Duration
	SweepInterval time.Duration
	AfterFunc     func(d time.Duration, f func()) *time.Timer
	Now           func() time.Time
}

// Hub owns all mutable session state. Every inbound event - join, ready,
// action, round-complete, disconnect, timer fire, sweep tick - is handled to
// completion on the Run goroutine before the next is processed, so session
// mutation needs no locking and every handler re-fetches its session by id.
type Hub struct {
	registry  *Registry
	directory *Directory
	clients   map[string]outbox

	events chan hubEvent
	timers *timerSet
	store  ResultArchiver

	rng       *rand.Rand
	countdown time.Duration
	grace     time.Duration
	sweepTick time.Duration
	now       func() time.Time
}

func NewHub(opts Options) *Hub {
	if opts.Countdown == 0 {
		opts.Countdown = internal.CountdownDuration
	}
	if opts.Grace == 0 {
		opts.Grace = internal.GameOverGrace
	}
	if opts.MaxSessionAge == 0 {
		opts.MaxSessionAge = internal.MaxSessionAge
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = internal.SweepInterval
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = time.AfterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(time.Now().UnixNano())>>1))
	}

	return &Hub{
		registry:  NewRegistry(opts.MaxSessionAge),
		directory: NewDirectory(),
		clients:   make(map[string]outbox),
		events:    make(chan hubEvent, 256),
		timers:    newTimerSet(opts.AfterFunc),
		store:     opts.Store,
		rng:       opts.Rand,
		countdown: opts.Countdown,
		grace:     opts.Grace,
		sweepTick: opts.SweepInterval,
		now:       opts.Now,
	}
}

// Run drains the event channel until the context is cancelled. This is the
// only goroutine that touches session contents or the clients map.
func (h *Hub) Run(ctx context.Context) {
	log.Printf("[Hub.Run] event loop started (sweep every %s)", h.sweepTick)
	ticker := time.NewTicker(h.sweepTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Hub.Run] context cancelled, event loop stopping")
			return
		case ev := <-h.events:
			h.dispatch(ev)
		case <-ticker.C:
			h.handleSweep()
		}
	}
}

func (h *Hub) post(ev hubEvent) {
	h.events <- ev
}

// Attach registers a freshly upgraded connection with the loop.
func (h *Hub) Attach(connID, character string, out outbox) {
	h.post(connectEvent{connID: connID, character: character, out: out})
}

// Detach is posted by the transport when a connection drops or its read loop
// exits.
func (h *Hub) Detach(connID string) {
	h.post(disconnectEvent{connID: connID})
}

// Inbound is posted by the transport for every parsed client message.
func (h *Hub) Inbound(connID, msgType string, data json.RawMessage) {
	h.post(inboundEvent{connID: connID, msgType: msgType, data: data})
}

// Stats reports registry and directory sizes for the HTTP surface. Safe off
// the loop: both structures carry their own read locks.
func (h *Hub) Stats() (publicSessions, privateSessions, connections int) {
	pub, priv := h.registry.Counts()
	return pub, priv, h.directory.Count()
}

func (h *Hub) dispatch(ev hubEvent) {
	switch e := ev.(type) {
	case connectEvent:
		h.handleConnect(e.connID, e.character, e.out)
	case disconnectEvent:
		h.handleDisconnect(e.connID)
	case inboundEvent:
		h.dispatchInbound(e)
	case countdownElapsed:
		h.handleCountdownElapsed(e.sessionID, e.gen)
	case graceElapsed:
		h.handleGraceElapsed(e.sessionID)
	default:
		log.Printf("[Hub.dispatch] unknown event %T", ev)
	}
}

func (h *Hub) dispatchInbound(ev inboundEvent) {
	switch ev.msgType {
	case internal.EventQuickPlay:
		var d internal.QuickPlayData
		if !h.decode(ev, &d) {
			return
		}
		h.handleQuickPlay(ev.connID, d.Character)
	case internal.EventCreatePrivateGame:
		var d internal.CreatePrivateGameData
		if !h.decode(ev, &d) {
			return
		}
		h.handleCreatePrivate(ev.connID, d.Character)
	case internal.EventJoinPrivateGame:
		var d internal.JoinPrivateGameData
		if !h.decode(ev, &d) {
			return
		}
		h.handleJoinPrivate(ev.connID, d.GameID, d.Character)
	case internal.EventPlayerReady:
		var d internal.PlayerReadyData
		if !h.decode(ev, &d) {
			return
		}
		h.handlePlayerReady(ev.connID, d)
	case internal.EventStartGameForReal:
		var d internal.StartGameForRealData
		if !h.decode(ev, &d) {
			return
		}
		h.handleStartForReal(ev.connID, d.GameID)
	case internal.EventPlayerAction:
		var d internal.PlayerActionData
		if !h.decode(ev, &d) {
			return
		}
		h.handlePlayerAction(ev.connID, d)
	case internal.EventRoundComplete:
		var d internal.RoundCompleteData
		if !h.decode(ev, &d) {
			return
		}
		h.handleRoundComplete(ev.connID, d.GameID)
	default:
		log.Printf("[Hub.dispatchInbound] conn=%s unknown message type %q", ev.connID, ev.msgType)
		h.sendError(ev.connID, "unknown message type: "+ev.msgType)
	}
}

// decode parses a payload against the closed schema; a violation is a typed
// error back to the sender, never a silent partial read.
func (h *Hub) decode(ev inboundEvent, into any) bool {
	if err := json.Unmarshal(ev.data, into); err != nil {
		log.Printf("[Hub.decode] conn=%s invalid %s payload: %v", ev.connID, ev.msgType, err)
		h.sendError(ev.connID, "invalid payload for "+ev.msgType)
		return false
	}
	return true
}

func (h *Hub) handleConnect(connID, character string, out outbox) {
	h.clients[connID] = out
	h.directory.Bind(connID, character)
	log.Printf("[Hub.handleConnect] conn=%s character=%q attached (%d connections)",
		connID, character, len(h.clients))
}

// =============================================================================
// OUTBOUND FAN-OUT
// =============================================================================

func envelope(msgType string, data any) internal.Message[any] {
	return internal.Message[any]{Type: msgType, Data: data}
}

func (h *Hub) sendTo(connID string, msg internal.Message[any]) {
	out, ok := h.clients[connID]
	if !ok {
		return
	}
	if !out.enqueue(msg) {
		log.Printf("[Hub.sendTo] conn=%s send queue full, dropping %s", connID, msg.Type)
	}
}

func (h *Hub) sendError(connID, message string) {
	h.sendTo(connID, envelope(internal.EventGameError, internal.GameErrorData{Message: message}))
}

func (h *Hub) broadcast(s *internal.Session, msg internal.Message[any]) {
	for _, p := range s.Players {
		if p.IsConnected {
			h.sendTo(p.ConnID, msg)
		}
	}
}

func (h *Hub) broadcastExcept(s *internal.Session, msg internal.Message[any], exceptConnID string) {
	for _, p := range s.Players {
		if p.IsConnected && p.ConnID != exceptConnID {
			h.sendTo(p.ConnID, msg)
		}
	}
}

// =============================================================================
// SWEEP
// =============================================================================

// handleSweep evicts aged-out and empty sessions. Runs on the loop both
// periodically and eagerly at the start of every matchmaking attempt.
func (h *Hub) handleSweep() {
	evicted := h.registry.Sweep(h.now())
	for _, s := range evicted {
		h.timers.cancelAll(s.Id)
		for _, p := range s.Players {
			if p.IsConnected {
				h.sendError(p.ConnID, "session expired")
			}
			h.directory.Clear(p.ConnID)
		}
	}
	if len(evicted) > 0 {
		log.Printf("[Hub.handleSweep] evicted %d session(s)", len(evicted))
	}
}
