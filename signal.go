package santa

// Signal is a saturating single-slot wakeup.
//
// Raise deposits at most one outstanding notification: raising an already
// raised Signal is a no-op, so any number of triggers collapse into a single
// pending wakeup and a raiser never blocks. Because of that coalescing, a
// received notification carries no count; the receiver must consult
// authoritative state (the gates' ready flags) to learn what, if anything,
// needs servicing.
//
// Signal behaves like a channel: it can be passed by value and all copies
// share the same slot. The zero value is not usable; construct with
// NewSignal.
type Signal struct {
	ch chan struct{}
}

// NewSignal returns a ready-to-use Signal.
func NewSignal() Signal {
	// The 1-slot buffer is what makes the wakeup saturating rather than
	// lossy: a notification raised while the receiver is busy is held
	// until the receiver returns to its wait point.
	return Signal{ch: make(chan struct{}, 1)}
}

// Raise deposits a notification if none is pending. It never blocks.
func (s Signal) Raise() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns the channel to receive notifications from. Receiving consumes
// the pending notification, re-arming the Signal.
func (s Signal) C() <-chan struct{} {
	return s.ch
}
