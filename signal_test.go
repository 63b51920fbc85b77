package santa

import (
	"testing"
	"time"
)

func TestSignalCoalesces(t *testing.T) {
	s := NewSignal()
	s.Raise()
	s.Raise()
	s.Raise()

	select {
	case <-s.C():
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-s.C():
		t.Fatal("multiple raises must collapse into one notification")
	default:
	}
}

func TestSignalWakesWaiter(t *testing.T) {
	s := NewSignal()
	done := make(chan struct{})
	go func() {
		<-s.C()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Raise()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not woken by Raise")
	}
}

func TestSignalRearms(t *testing.T) {
	s := NewSignal()
	for range 3 {
		s.Raise()
		select {
		case <-s.C():
		default:
			t.Fatal("notification lost after re-arming")
		}
	}
}

func TestSignalSharedByValue(t *testing.T) {
	s := NewSignal()
	copied := s
	copied.Raise()
	select {
	case <-s.C():
	default:
		t.Fatal("copies must share the same slot")
	}
}
