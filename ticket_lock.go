package santa

import (
	"sync/atomic"
)

// ticketLock is a fair, FIFO spin-lock guarding each gate's counters.
//
// The gates' critical sections only touch a few fields (admission
// check-and-increment, completion counting), so a ticket lock keeps them
// cheap while guaranteeing that workers are admitted in the order they
// called Lock(): a worker that keeps arriving cannot be barged past forever
// by newer arrivals, which is where the protocol's "eventually served"
// property bottoms out.
//
// Lock() takes a ticket number and spins (with adaptive backoff) until
// `serving` reaches it; Unlock() advances `serving`.
type ticketLock struct {
	_       noCopy
	next    atomic.Uint32
	serving atomic.Uint32
}

// Lock acquires the lock. Blocks until the lock is available.
func (m *ticketLock) Lock() {
	my := m.next.Add(1) - 1
	var spins int
	for {
		if m.serving.Load() == my {
			return
		}
		backoff(&spins)
	}
}

// Unlock releases the lock.
func (m *ticketLock) Unlock() {
	m.serving.Add(1)
}
