package santa

import (
	"context"
	"sync/atomic"

	"github.com/northpole-labs/santa/internal/opt"
)

// Stats counts closed sessions. Only the dispatcher writes it, strictly
// after a session's completion handshake, so the counters are monotonic and
// a reader can never observe a session that did not fully close. The two
// counters sit on separate cache lines; readers poll them while the
// dispatcher is hot.
type Stats struct {
	deliveries    atomic.Uint64
	_             [opt.CacheLineSize - 8]byte
	consultations atomic.Uint64
}

// Deliveries returns the number of completed delivery sessions.
func (s *Stats) Deliveries() uint64 {
	return s.deliveries.Load()
}

// Consultations returns the number of completed consultation sessions.
func (s *Stats) Consultations() uint64 {
	return s.consultations.Load()
}

// Dispatcher is the single-flight arbiter between the two gates.
//
// It cycles IDLE -> AWAKENED -> serving -> IDLE. On every wakeup it checks
// the ReindeerGate's ready flag before the ElfGate's (reindeer hold strict
// priority), serves at most one session at a time, and before going back to
// sleep re-checks both flags. The re-check is what makes the coalesced
// wakeup harmless: one pending notification may stand in for any number of
// triggers that fired while a session was in flight, so the flags, not the
// signal, decide whether there is work.
type Dispatcher struct {
	_ noCopy

	reindeer *ReindeerGate
	elves    *ElfGate
	wake     Signal
	stats    Stats
	obs      Observer
}

// NewDispatcher returns a dispatcher arbitrating between the two gates.
// Both gates must have been constructed with the same wake Signal.
func NewDispatcher(reindeer *ReindeerGate, elves *ElfGate, wake Signal, obs Observer) *Dispatcher {
	if reindeer == nil || elves == nil {
		panic("santa: dispatcher needs both gates")
	}
	if obs == nil {
		obs = NoopObserver{}
	}
	return &Dispatcher{
		reindeer: reindeer,
		elves:    elves,
		wake:     wake,
		obs:      obs,
	}
}

// Stats returns the dispatcher's session counters.
func (d *Dispatcher) Stats() *Stats {
	return &d.stats
}

// Run sleeps until a gate raises the wake signal, serves every group that
// is ready (reindeer first), and goes back to sleep. It returns the context
// error once ctx is cancelled; cancellation is the only way out.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake.C():
		}
		if err := d.drain(ctx); err != nil {
			return err
		}
	}
}

// drain serves ready groups until neither gate has one. A wakeup whose
// work was already consumed by an earlier drain falls straight through the
// default case: a stale signal serves nothing and strands nothing.
func (d *Dispatcher) drain(ctx context.Context) error {
	for {
		switch {
		case d.reindeer.Ready():
			d.reindeer.ReleaseForHarness()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.reindeer.sessionDone():
			}
			d.stats.deliveries.Add(1)
			d.obs.SessionClosed(KindReindeer, d.reindeer.Size())
		case d.elves.Ready():
			d.elves.ReleaseForConsultation()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.elves.sessionDone():
			}
			d.stats.consultations.Add(1)
			d.obs.SessionClosed(KindElf, d.elves.GroupSize())
		default:
			return nil
		}
	}
}
