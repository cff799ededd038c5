package game

import (
	"log"
	"time"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// timerSet tracks the deferred callbacks a session can have in flight: the
// start countdown and the post-game-over grace delay. Timers do not mutate
// state themselves; they post an event back into the hub loop, and the
// handler re-checks lifecycle state at fire time. A cancelled or superseded
// timer that still fires must end up a guarded no-op, never a forced
// transition - the countdown generation check in the handler covers the
// window between a fire and its cancellation.
//
// Only the hub goroutine touches the maps.
type timerSet struct {
	afterFunc func(d time.Duration, f func()) *time.Timer
	countdown map[string]*time.Timer
	grace     map[string]*time.Timer
}

func newTimerSet(afterFunc func(d time.Duration, f func()) *time.Timer) *timerSet {
	return &timerSet{
		afterFunc: afterFunc,
		countdown: make(map[string]*time.Timer),
		grace:     make(map[string]*time.Timer),
	}
}

func (t *timerSet) scheduleCountdown(h *Hub, sessionID string, gen int, d time.Duration) {
	t.cancelCountdown(sessionID)
	log.Printf("[timerSet.scheduleCountdown] session=%s gen=%d fires in %s", sessionID, gen, d)
	t.countdown[sessionID] = t.afterFunc(d, func() {
		h.post(countdownElapsed{sessionID: sessionID, gen: gen})
	})
}

func (t *timerSet) cancelCountdown(sessionID string) {
	if timer, ok := t.countdown[sessionID]; ok {
		timer.Stop()
		delete(t.countdown, sessionID)
		log.Printf("[timerSet.cancelCountdown] session=%s countdown cancelled", sessionID)
	}
}

func (t *timerSet) scheduleGrace(h *Hub, sessionID string, d time.Duration) {
	t.cancelGrace(sessionID)
	log.Printf("[timerSet.scheduleGrace] session=%s teardown in %s", sessionID, d)
	t.grace[sessionID] = t.afterFunc(d, func() {
		h.post(graceElapsed{sessionID: sessionID})
	})
}

func (t *timerSet) cancelGrace(sessionID string) {
	if timer, ok := t.grace[sessionID]; ok {
		timer.Stop()
		delete(t.grace, sessionID)
	}
}

func (t *timerSet) cancelAll(sessionID string) {
	t.cancelCountdown(sessionID)
	t.cancelGrace(sessionID)
}
