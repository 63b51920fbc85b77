package santa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

var errBadDelayRange = errors.New("santa: delay range must satisfy 0 <= min <= max")

// Config parameterizes a Simulation. The zero value of any field is
// replaced with the classic problem's defaults: 9 reindeer, 10 elves,
// groups of 3, vacations of 2-5s, toy-making of 1-4s and 100ms tasks.
type Config struct {
	ReindeerCount int
	ElfCount      int
	ElfGroupSize  int

	Vacation  DelayRange // reindeer offsite period
	ToyMaking DelayRange // elf work period
	Harness   DelayRange // reindeer task once released
	Consult   DelayRange // elf task once released

	// RunDuration bounds Run. Zero means run until the caller's context
	// is cancelled.
	RunDuration time.Duration

	Delay    Delayer  // delay source, uniform pseudo-random if nil
	Observer Observer // event sink, discarded if nil
}

func (c Config) withDefaults() Config {
	if c.ReindeerCount == 0 {
		c.ReindeerCount = 9
	}
	if c.ElfCount == 0 {
		c.ElfCount = 10
	}
	if c.ElfGroupSize == 0 {
		c.ElfGroupSize = 3
	}
	if c.Vacation == (DelayRange{}) {
		c.Vacation = DelayRange{Min: 2 * time.Second, Max: 5 * time.Second}
	}
	if c.ToyMaking == (DelayRange{}) {
		c.ToyMaking = DelayRange{Min: time.Second, Max: 4 * time.Second}
	}
	if c.Harness == (DelayRange{}) {
		c.Harness = DelayRange{Min: 100 * time.Millisecond, Max: 100 * time.Millisecond}
	}
	if c.Consult == (DelayRange{}) {
		c.Consult = DelayRange{Min: 100 * time.Millisecond, Max: 100 * time.Millisecond}
	}
	if c.Delay == nil {
		c.Delay = randomDelayer{}
	}
	if c.Observer == nil {
		c.Observer = NoopObserver{}
	}
	return c
}

func (c Config) validate() error {
	if c.ReindeerCount < 1 {
		return fmt.Errorf("santa: reindeer count %d must be positive", c.ReindeerCount)
	}
	if c.ElfGroupSize < 1 {
		return fmt.Errorf("santa: elf group size %d must be positive", c.ElfGroupSize)
	}
	if c.ElfCount < c.ElfGroupSize {
		return fmt.Errorf("santa: elf count %d below group size %d, no group could ever form", c.ElfCount, c.ElfGroupSize)
	}
	if c.RunDuration < 0 {
		return fmt.Errorf("santa: run duration %v must not be negative", c.RunDuration)
	}
	for _, r := range []DelayRange{c.Vacation, c.ToyMaking, c.Harness, c.Consult} {
		if err := r.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Simulation owns one dispatcher, one gate per population and the fixed set
// of worker loops. Construct with New, run with Run.
type Simulation struct {
	cfg Config

	wake       Signal
	reindeer   *ReindeerGate
	elves      *ElfGate
	dispatcher *Dispatcher
}

// New wires a dispatcher and both gates around a shared wake signal.
func New(cfg Config) (*Simulation, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	wake := NewSignal()
	s := &Simulation{cfg: cfg, wake: wake}
	s.reindeer = NewReindeerGate(cfg.ReindeerCount, wake, cfg.Observer)
	s.elves = NewElfGate(cfg.ElfGroupSize, wake, cfg.Observer)
	s.dispatcher = NewDispatcher(s.reindeer, s.elves, wake, cfg.Observer)
	return s, nil
}

// Stats returns the dispatcher's session counters. Safe to read while the
// simulation is running.
func (s *Simulation) Stats() *Stats {
	return s.dispatcher.Stats()
}

// Run launches the dispatcher and all worker loops and blocks until ctx is
// cancelled and every goroutine has exited. Cancelling ctx is the orderly
// way to end the run: the gates are stopped so no worker stays blocked, the
// dispatcher is interrupted at its wait point, and Run returns nil.
func (s *Simulation) Run(ctx context.Context) error {
	if s.cfg.RunDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunDuration)
		defer cancel()
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.dispatcher.Run(gctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})
	for id := 1; id <= s.cfg.ReindeerCount; id++ {
		g.Go(func() error { return s.runReindeer(gctx, id) })
	}
	for id := 1; id <= s.cfg.ElfCount; id++ {
		g.Go(func() error { return s.runElf(gctx, id) })
	}
	// Stop both gates once the context ends so that workers blocked
	// inside Arrive wake up and observe the shutdown.
	g.Go(func() error {
		<-gctx.Done()
		s.reindeer.Stop()
		s.elves.Stop()
		return nil
	})

	return g.Wait()
}
