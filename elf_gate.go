package santa

import (
	"sync/atomic"
)

// elfRound is one consultation group in the making. Its members are the
// elves whose arrivals counted 1..groupSize for this round; only they wait
// on this round's latch.
type elfRound struct {
	members []int
	release Latch
}

// ElfGate forms elves into fixed-size consultation groups, cyclically.
//
// Group formation never pauses: the arrival that fills a group (the
// trigger) moves it onto a FIFO queue of complete groups, raises the
// dispatcher signal, and the very next arrival starts a fresh group. The
// queue is what keeps a group formed while another is being served from
// being lost, and its FIFO order is what makes every elf that keeps asking
// for help eventually reach the front.
//
// Exactly the members of a round wait on that round's latch, so a release
// wakes exactly groupSize elves and an elf can never leak into a group it
// did not arrive into.
type ElfGate struct {
	_  noCopy
	mu ticketLock

	size int

	forming   *elfRound   // group still collecting arrivals, nil if empty
	pending   []*elfRound // complete groups awaiting the dispatcher, FIFO
	serving   *elfRound   // group currently consulting, nil if none
	consulted int

	stopped bool
	ready   atomic.Bool // at least one complete group is pending

	wake Signal // shared dispatcher wakeup
	done Signal // session-closeable handshake
	obs  Observer
}

// NewElfGate returns a gate forming groups of groupSize elves. The wake
// Signal is shared with the dispatcher (and usually with the ReindeerGate).
func NewElfGate(groupSize int, wake Signal, obs Observer) *ElfGate {
	if groupSize <= 0 {
		panic("santa: elf group size must be positive")
	}
	if obs == nil {
		obs = NoopObserver{}
	}
	return &ElfGate{
		size: groupSize,
		wake: wake,
		done: NewSignal(),
		obs:  obs,
	}
}

// GroupSize returns the number of elves per consultation session.
func (g *ElfGate) GroupSize() int {
	return g.size
}

// Ready reports whether a complete group is waiting for the dispatcher.
func (g *ElfGate) Ready() bool {
	return g.ready.Load()
}

// Waiting returns the number of elves in the group currently forming.
func (g *ElfGate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.forming == nil {
		return 0
	}
	return len(g.forming.members)
}

// Pending returns the number of complete groups awaiting the dispatcher.
func (g *ElfGate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Arrive joins the calling elf to the group currently forming and blocks
// until the dispatcher releases that group for consultation. Returns
// ErrStopped after Stop.
func (g *ElfGate) Arrive(id int) error {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return ErrStopped
	}
	if g.forming == nil {
		g.forming = &elfRound{members: make([]int, 0, g.size)}
	}
	r := g.forming
	r.members = append(r.members, id)
	trigger := len(r.members) == g.size
	if trigger {
		// Snapshot the group and reset the waiting set so the next
		// arrival starts a fresh round.
		g.pending = append(g.pending, r)
		g.forming = nil
		g.ready.Store(true)
	}
	g.mu.Unlock()

	g.obs.Arrived(KindElf, id)
	if trigger {
		g.wake.Raise()
	}

	r.release.Wait()

	g.mu.Lock()
	stopped := g.stopped
	g.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	g.obs.Released(KindElf, id)
	return nil
}

// ReleaseForConsultation starts a consultation session with the oldest
// complete group. Dispatcher only; calling it with no group pending or with
// a session still open is an invariant violation.
func (g *ElfGate) ReleaseForConsultation() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	if g.serving != nil {
		g.mu.Unlock()
		panic("santa: consultation already in progress")
	}
	if len(g.pending) == 0 {
		g.mu.Unlock()
		panic("santa: releasing with no elf group ready")
	}
	r := g.pending[0]
	g.pending = g.pending[1:]
	g.serving = r
	g.consulted = 0
	g.ready.Store(len(g.pending) > 0)
	g.mu.Unlock()

	r.release.Open()
}

// ReportConsulted records that one released elf finished its consultation.
// The last report of the group signals the dispatcher that the session may
// close and clears the per-round state.
func (g *ElfGate) ReportConsulted(id int) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	if g.serving == nil {
		g.mu.Unlock()
		panic("santa: consult report outside a session")
	}
	g.consulted++
	last := g.consulted == g.size
	if last {
		g.serving = nil
		g.consulted = 0
	}
	g.mu.Unlock()

	if last {
		g.done.Raise()
	}
}

// Stop wakes every blocked elf, in whatever round, and makes all future
// Arrive calls return ErrStopped.
func (g *ElfGate) Stop() {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.stopped = true
	var latches []*Latch
	if g.forming != nil {
		latches = append(latches, &g.forming.release)
	}
	for _, r := range g.pending {
		latches = append(latches, &r.release)
	}
	if g.serving != nil {
		latches = append(latches, &g.serving.release)
	}
	g.mu.Unlock()

	for _, l := range latches {
		l.Open()
	}
}

// sessionDone returns the channel the dispatcher blocks on for the
// completion handshake.
func (g *ElfGate) sessionDone() <-chan struct{} {
	return g.done.C()
}
