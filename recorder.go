package santa

import (
	"sync/atomic"

	"github.com/llxisdsh/pb"
)

// participant keys the per-worker tallies.
type participant struct {
	Kind Kind
	ID   int
}

// Recorder is an Observer that keeps concurrent per-worker tallies of
// arrivals and releases, plus per-kind session totals. It is safe for use
// from all worker goroutines at once and is what the property tests and the
// demo binary read their numbers from.
//
// The zero value is ready to use.
type Recorder struct {
	arrivals pb.MapOf[participant, uint64]
	releases pb.MapOf[participant, uint64]

	sessions [2]atomic.Uint64
	served   [2]atomic.Uint64
}

func bump(m *pb.MapOf[participant, uint64], p participant) {
	m.ProcessEntry(p, func(e *pb.EntryOf[participant, uint64]) (*pb.EntryOf[participant, uint64], uint64, bool) {
		if e != nil {
			return &pb.EntryOf[participant, uint64]{Value: e.Value + 1}, 0, false
		}
		return &pb.EntryOf[participant, uint64]{Value: 1}, 0, false
	})
}

// Arrived implements Observer.
func (r *Recorder) Arrived(kind Kind, id int) {
	bump(&r.arrivals, participant{Kind: kind, ID: id})
}

// Released implements Observer.
func (r *Recorder) Released(kind Kind, id int) {
	bump(&r.releases, participant{Kind: kind, ID: id})
}

// SessionClosed implements Observer.
func (r *Recorder) SessionClosed(kind Kind, served int) {
	r.sessions[kind].Add(1)
	r.served[kind].Add(uint64(served))
}

// Arrivals returns how often the given worker joined its gate.
func (r *Recorder) Arrivals(kind Kind, id int) uint64 {
	v, _ := r.arrivals.Load(participant{Kind: kind, ID: id})
	return v
}

// Releases returns how often the given worker was released into a session.
func (r *Recorder) Releases(kind Kind, id int) uint64 {
	v, _ := r.releases.Load(participant{Kind: kind, ID: id})
	return v
}

// Sessions returns the number of closed sessions of the given kind.
func (r *Recorder) Sessions(kind Kind) uint64 {
	return r.sessions[kind].Load()
}

// Served returns the total number of workers served across all closed
// sessions of the given kind.
func (r *Recorder) Served(kind Kind) uint64 {
	return r.served[kind].Load()
}

// RangeReleases calls f for every worker that was released at least once,
// until f returns false.
func (r *Recorder) RangeReleases(f func(kind Kind, id int, n uint64) bool) {
	r.releases.Range(func(p participant, n uint64) bool {
		return f(p.Kind, p.ID, n)
	})
}
