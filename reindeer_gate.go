package santa

import (
	"errors"
	"sync/atomic"
)

// ErrStopped is returned from a gate's Arrive after Stop has been called.
// It marks orderly termination, not a failure: the worker loop should exit.
var ErrStopped = errors.New("santa: gate stopped")

// ReindeerGate accumulates the full reindeer population into a team and
// hands it to the dispatcher as one delivery session.
//
// A round goes through three phases:
//
//  1. collecting: Arrive increments the arrival counter; the arrival that
//     completes the team becomes the trigger and raises the dispatcher
//     signal exactly once. All arrivals, trigger included, block on the
//     round's release latch.
//  2. harnessing: ReleaseForHarness (dispatcher only) atomically resets the
//     counter, closes the gate to new arrivals and opens the latch. Workers
//     harness and call ReportHarnessed.
//  3. closing: the last report raises the session-closeable signal for the
//     dispatcher, then reopens the gate, in that order.
//
// A reindeer returning from its offsite period while a round is closing
// blocks until the gate reopens; it can never be counted into the closing
// round because reset-and-reopen happens under the same lock as Arrive.
type ReindeerGate struct {
	_  noCopy
	mu ticketLock

	size      int
	arrived   int
	harnessed int
	closed    bool // harness round in progress, arrivals must wait
	stopped   bool

	release *Latch // wakes the team admitted to the current round
	reopen  *Latch // wakes arrivals blocked while closed; set per round

	// ready is the authoritative flag backing the dispatcher's wakeup:
	// a coalesced signal with ready unset is stale and must be ignored.
	ready atomic.Bool

	wake Signal // shared dispatcher wakeup
	done Signal // session-closeable handshake
	obs  Observer
}

// NewReindeerGate returns a gate for a team of size reindeer. The wake
// Signal is shared with the dispatcher (and usually with the ElfGate).
func NewReindeerGate(size int, wake Signal, obs Observer) *ReindeerGate {
	if size <= 0 {
		panic("santa: reindeer team size must be positive")
	}
	if obs == nil {
		obs = NoopObserver{}
	}
	return &ReindeerGate{
		size:    size,
		release: new(Latch),
		wake:    wake,
		done:    NewSignal(),
		obs:     obs,
	}
}

// Size returns the team size required for a delivery session.
func (g *ReindeerGate) Size() int {
	return g.size
}

// Ready reports whether a full team is waiting for the dispatcher.
func (g *ReindeerGate) Ready() bool {
	return g.ready.Load()
}

// Arrive joins the calling reindeer to the next delivery round and blocks
// until the dispatcher releases the team for harnessing. If the gate is
// mid-round it first blocks until the gate reopens. Returns ErrStopped
// after Stop.
func (g *ReindeerGate) Arrive(id int) error {
	g.mu.Lock()
	for {
		if g.stopped {
			g.mu.Unlock()
			return ErrStopped
		}
		if !g.closed {
			break
		}
		// Round in progress: wait out the closing round, then re-check.
		// This arrival must land in a later round.
		reopen := g.reopen
		g.mu.Unlock()
		reopen.Wait()
		g.mu.Lock()
	}
	g.arrived++
	if g.arrived > g.size {
		g.mu.Unlock()
		panic("santa: reindeer arrivals exceed team size")
	}
	release := g.release
	trigger := g.arrived == g.size
	if trigger {
		// Flag before signal: the dispatcher trusts the flag, not the
		// (coalescing) signal.
		g.ready.Store(true)
	}
	g.mu.Unlock()

	g.obs.Arrived(KindReindeer, id)
	if trigger {
		g.wake.Raise()
	}

	release.Wait()

	g.mu.Lock()
	stopped := g.stopped
	g.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	g.obs.Released(KindReindeer, id)
	return nil
}

// ReleaseForHarness starts the delivery session: it clears the ready flag,
// resets the arrival counter, closes the gate to new arrivals and wakes the
// whole team. Dispatcher only; calling it without a full team waiting is an
// invariant violation.
func (g *ReindeerGate) ReleaseForHarness() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	if g.closed {
		g.mu.Unlock()
		panic("santa: harness session already in progress")
	}
	if g.arrived != g.size {
		g.mu.Unlock()
		panic("santa: releasing an incomplete reindeer team")
	}
	g.ready.Store(false)
	g.arrived = 0
	g.harnessed = 0
	g.closed = true
	g.reopen = new(Latch)
	release := g.release
	g.release = new(Latch)
	g.mu.Unlock()

	release.Open()
}

// ReportHarnessed records that one released reindeer finished harnessing.
// The last report signals the dispatcher that the session may close, then
// reopens the gate for the next round.
func (g *ReindeerGate) ReportHarnessed(id int) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	if !g.closed {
		g.mu.Unlock()
		panic("santa: harness report outside a session")
	}
	g.harnessed++
	last := g.harnessed == g.size
	var reopen *Latch
	if last {
		g.harnessed = 0
		g.closed = false
		reopen = g.reopen
		g.reopen = nil
	}
	g.mu.Unlock()

	if last {
		g.done.Raise()
		reopen.Open()
	}
}

// Stop wakes every blocked arrival and makes all future Arrive calls return
// ErrStopped. It does not cancel the dispatcher; cancel its context as well.
func (g *ReindeerGate) Stop() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.stopped = true
	release, reopen := g.release, g.reopen
	g.mu.Unlock()

	release.Open()
	if reopen != nil {
		reopen.Open()
	}
}

// sessionDone returns the channel the dispatcher blocks on for the
// completion handshake.
func (g *ReindeerGate) sessionDone() <-chan struct{} {
	return g.done.C()
}
