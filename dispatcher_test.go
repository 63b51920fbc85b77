package santa

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestSystem(obs Observer, teamSize, groupSize int) (*Dispatcher, *ReindeerGate, *ElfGate) {
	wake := NewSignal()
	r := NewReindeerGate(teamSize, wake, obs)
	e := NewElfGate(groupSize, wake, obs)
	return NewDispatcher(r, e, wake, obs), r, e
}

// With a full reindeer team and a full elf group both ready before the
// dispatcher wakes, the delivery must run first.
func TestDispatcherReindeerPriority(t *testing.T) {
	log := &eventLog{}
	d, r, e := newTestSystem(log, 9, 3)

	var wg sync.WaitGroup
	wg.Add(9)
	for id := 1; id <= 9; id++ {
		go func() {
			defer wg.Done()
			if err := r.Arrive(id); err == nil {
				r.ReportHarnessed(id)
			}
		}()
	}
	wg.Add(3)
	for id := 1; id <= 3; id++ {
		go func() {
			defer wg.Done()
			if err := e.Arrive(id); err == nil {
				e.ReportConsulted(id)
			}
		}()
	}

	waitUntil(t, 2*time.Second, func() bool { return r.Ready() && e.Ready() },
		"both groups never became ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ran := make(chan struct{})
	go func() {
		defer close(ran)
		d.Run(ctx)
	}()

	waitUntil(t, 2*time.Second, func() bool {
		return d.Stats().Deliveries() == 1 && d.Stats().Consultations() == 1
	}, "dispatcher did not serve both groups")

	sessions := log.sessions()
	if len(sessions) != 2 || sessions[0] != KindReindeer {
		t.Fatalf("session order = %v, want the delivery first", sessions)
	}

	wg.Wait()
	cancel()
	<-ran
}

// A wakeup with no corresponding ready group is consumed without serving
// anything, and the dispatcher keeps working afterwards.
func TestDispatcherStaleSignal(t *testing.T) {
	log := &eventLog{}
	d, _, e := newTestSystem(log, 9, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ran := make(chan struct{})
	go func() {
		defer close(ran)
		d.Run(ctx)
	}()

	d.wake.Raise()
	time.Sleep(50 * time.Millisecond)
	if n := d.Stats().Deliveries() + d.Stats().Consultations(); n != 0 {
		t.Fatalf("stale signal produced %d sessions", n)
	}

	var wg sync.WaitGroup
	wg.Add(3)
	for id := 1; id <= 3; id++ {
		go func() {
			defer wg.Done()
			if err := e.Arrive(id); err == nil {
				e.ReportConsulted(id)
			}
		}()
	}

	waitUntil(t, 2*time.Second, func() bool { return d.Stats().Consultations() == 1 },
		"dispatcher stopped serving after a stale signal")
	wg.Wait()
	cancel()
	<-ran
}

// While a delivery's completion handshake is outstanding the dispatcher
// must not touch the ElfGate, and triggers that fire during the session
// coalesce into one wakeup that still gets every group served.
func TestDispatcherSingleFlightAndCoalescedWakeups(t *testing.T) {
	log := &eventLog{}
	d, r, e := newTestSystem(log, 9, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ran := make(chan struct{})
	go func() {
		defer close(ran)
		d.Run(ctx)
	}()

	allow := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(9)
	for id := 1; id <= 9; id++ {
		go func() {
			defer wg.Done()
			if err := r.Arrive(id); err == nil {
				<-allow
				r.ReportHarnessed(id)
			}
		}()
	}

	// Delivery in flight: all nine released, none reported yet.
	waitUntil(t, 2*time.Second, func() bool { return log.count("released", KindReindeer) == 9 },
		"reindeer never released")

	// Two elf groups form mid-session.
	wg.Add(6)
	for id := 1; id <= 6; id++ {
		go func() {
			defer wg.Done()
			if err := e.Arrive(id); err == nil {
				e.ReportConsulted(id)
			}
		}()
	}
	waitUntil(t, 2*time.Second, func() bool { return e.Pending() == 2 },
		"elf groups never formed")

	time.Sleep(50 * time.Millisecond)
	if n := log.count("released", KindElf); n != 0 {
		t.Fatalf("%d elves released while the delivery handshake was outstanding", n)
	}

	close(allow)

	waitUntil(t, 2*time.Second, func() bool {
		return d.Stats().Deliveries() == 1 && d.Stats().Consultations() == 2
	}, "coalesced wakeups lost a group")

	sessions := log.sessions()
	want := []Kind{KindReindeer, KindElf, KindElf}
	if len(sessions) != len(want) {
		t.Fatalf("sessions = %v, want %v", sessions, want)
	}
	for i := range want {
		if sessions[i] != want[i] {
			t.Fatalf("sessions = %v, want %v", sessions, want)
		}
	}

	wg.Wait()
	cancel()
	<-ran
}
