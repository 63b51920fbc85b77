package santa

import (
	"sync"
	"testing"
)

func TestRecorderConcurrentTallies(t *testing.T) {
	rec := &Recorder{}

	var wg sync.WaitGroup
	for id := 1; id <= 4; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				rec.Arrived(KindElf, id)
				rec.Released(KindElf, id)
			}
		}()
	}
	wg.Wait()

	for id := 1; id <= 4; id++ {
		if n := rec.Arrivals(KindElf, id); n != 100 {
			t.Errorf("arrivals for elf %d = %d, want 100", id, n)
		}
		if n := rec.Releases(KindElf, id); n != 100 {
			t.Errorf("releases for elf %d = %d, want 100", id, n)
		}
	}
	if n := rec.Releases(KindReindeer, 1); n != 0 {
		t.Errorf("reindeer releases = %d, want 0", n)
	}

	var total uint64
	rec.RangeReleases(func(kind Kind, id int, n uint64) bool {
		if kind != KindElf {
			t.Errorf("unexpected kind %v in release tallies", kind)
		}
		total += n
		return true
	})
	if total != 400 {
		t.Errorf("total releases = %d, want 400", total)
	}
}

func TestRecorderSessions(t *testing.T) {
	rec := &Recorder{}
	rec.SessionClosed(KindElf, 3)
	rec.SessionClosed(KindElf, 3)
	rec.SessionClosed(KindReindeer, 9)

	if n := rec.Sessions(KindElf); n != 2 {
		t.Errorf("elf sessions = %d, want 2", n)
	}
	if n := rec.Served(KindElf); n != 6 {
		t.Errorf("elves served = %d, want 6", n)
	}
	if n := rec.Sessions(KindReindeer); n != 1 {
		t.Errorf("reindeer sessions = %d, want 1", n)
	}
	if n := rec.Served(KindReindeer); n != 9 {
		t.Errorf("reindeer served = %d, want 9", n)
	}
}
