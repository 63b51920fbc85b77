package santa

import (
	"sync/atomic"

	"github.com/northpole-labs/santa/internal/opt"
)

// Latch is a one-shot open door with multiple waiters.
//
// Each gate round gets a fresh Latch: the admitted workers of that round
// block on it, and opening it releases exactly those workers. Workers of a
// later round block on a different Latch, which is what makes "never more,
// never fewer than the admitted group" a structural property rather than a
// counting discipline.
//
// Once Open() is called, all current and future Wait() calls return
// immediately. It is zero-value usable and 8 bytes in size
// (4 byte state + 4 byte semaphore).
type Latch struct {
	_ noCopy
	// state 32-bit:
	//   bit 0: open flag (1 = open)
	//   bits 1-31: waiter count
	state atomic.Uint32
	sema  opt.Sema
}

const (
	latchOpenFlag  = 1
	latchOneWaiter = 2 // 1 << 1
)

// Open opens the latch and wakes all currently blocked waiters.
// Any future calls to Wait() return immediately.
// Open is idempotent.
func (l *Latch) Open() {
	for {
		s := l.state.Load()
		if s&latchOpenFlag != 0 {
			return
		}
		if l.state.CompareAndSwap(s, s|latchOpenFlag) {
			waiters := s >> 1
			for range waiters {
				l.sema.Release()
			}
			return
		}
	}
}

// Wait blocks until Open is called.
// If Open has already been called, it returns immediately.
func (l *Latch) Wait() {
	for {
		s := l.state.Load()
		if s&latchOpenFlag != 0 {
			return
		}
		if l.state.CompareAndSwap(s, s+latchOneWaiter) {
			l.sema.Acquire()
			return
		}
	}
}

// Opened reports whether the latch has been opened.
func (l *Latch) Opened() bool {
	return l.state.Load()&latchOpenFlag != 0
}
