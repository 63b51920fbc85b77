package santa

// Kind identifies one of the two worker populations, and by extension the
// session type it participates in (reindeer deliver, elves consult).
type Kind uint8

const (
	KindReindeer Kind = iota
	KindElf
)

func (k Kind) String() string {
	switch k {
	case KindReindeer:
		return "reindeer"
	case KindElf:
		return "elf"
	default:
		return "unknown"
	}
}

// Observer is the sink for structured protocol events. The core calls into
// it at well-defined points but never depends on its behavior; callbacks
// are invoked outside any gate lock and must not block for long.
//
// Arrived fires when a worker joins its gate (before it blocks for release),
// Released when the worker has been released into a session, and
// SessionClosed when the dispatcher has received the full completion
// handshake for a session of the given kind.
type Observer interface {
	Arrived(kind Kind, id int)
	Released(kind Kind, id int)
	SessionClosed(kind Kind, served int)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) Arrived(Kind, int)       {}
func (NoopObserver) Released(Kind, int)      {}
func (NoopObserver) SessionClosed(Kind, int) {}

// MultiObserver fans each event out to every element, in order.
type MultiObserver []Observer

func (m MultiObserver) Arrived(kind Kind, id int) {
	for _, o := range m {
		o.Arrived(kind, id)
	}
}

func (m MultiObserver) Released(kind Kind, id int) {
	for _, o := range m {
		o.Released(kind, id)
	}
}

func (m MultiObserver) SessionClosed(kind Kind, served int) {
	for _, o := range m {
		o.SessionClosed(kind, served)
	}
}
