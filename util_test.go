package santa

import (
	"sync"
	"testing"
	"time"
)

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached within %v: %s", d, msg)
}

type event struct {
	name string // "arrived", "released", "session"
	kind Kind
	id   int // worker id, or served count for "session"
}

// eventLog is an Observer that records events in arrival order.
type eventLog struct {
	mu     sync.Mutex
	events []event
}

func (l *eventLog) Arrived(kind Kind, id int) {
	l.append(event{name: "arrived", kind: kind, id: id})
}

func (l *eventLog) Released(kind Kind, id int) {
	l.append(event{name: "released", kind: kind, id: id})
}

func (l *eventLog) SessionClosed(kind Kind, served int) {
	l.append(event{name: "session", kind: kind, id: served})
}

func (l *eventLog) append(e event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) count(name string, kind Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.name == name && e.kind == kind {
			n++
		}
	}
	return n
}

// sessions returns the kinds of closed sessions, in order.
func (l *eventLog) sessions() []Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Kind
	for _, e := range l.events {
		if e.name == "session" {
			out = append(out, e.kind)
		}
	}
	return out
}
