package santa

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delayer is the pseudo-random delay source behind the workers' offsite and
// task phases. Delay waits somewhere in [min, max] or until ctx is done,
// whichever comes first. The core never inspects how long it actually slept.
type Delayer interface {
	Delay(ctx context.Context, min, max time.Duration)
}

// DelayRange bounds one worker phase.
type DelayRange struct {
	Min, Max time.Duration
}

func (r DelayRange) validate() error {
	if r.Min < 0 || r.Max < r.Min {
		return errBadDelayRange
	}
	return nil
}

// randomDelayer is the default Delayer: uniform over [min, max].
type randomDelayer struct{}

func (randomDelayer) Delay(ctx context.Context, min, max time.Duration) {
	d := min
	if max > min {
		d += rand.N(max - min + 1)
	}
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// runReindeer is one reindeer's lifecycle: vacation, arrive, block until
// harnessed, harness, report, repeat. No gate lock is ever held while
// sleeping or harnessing. The loop exits at its boundaries on context
// cancellation or once the gate is stopped; it always returns nil because
// termination is orderly by design.
func (s *Simulation) runReindeer(ctx context.Context, id int) error {
	for ctx.Err() == nil {
		s.cfg.Delay.Delay(ctx, s.cfg.Vacation.Min, s.cfg.Vacation.Max)
		if ctx.Err() != nil {
			break
		}
		if err := s.reindeer.Arrive(id); err != nil {
			break
		}
		s.cfg.Delay.Delay(ctx, s.cfg.Harness.Min, s.cfg.Harness.Max)
		// Report even when cancelled mid-task: the report never blocks
		// and it lets the in-flight session close cleanly.
		s.reindeer.ReportHarnessed(id)
	}
	return nil
}

// runElf mirrors runReindeer for the elf population: make toys, arrive,
// block until the group is shown in, consult, report, repeat.
func (s *Simulation) runElf(ctx context.Context, id int) error {
	for ctx.Err() == nil {
		s.cfg.Delay.Delay(ctx, s.cfg.ToyMaking.Min, s.cfg.ToyMaking.Max)
		if ctx.Err() != nil {
			break
		}
		if err := s.elves.Arrive(id); err != nil {
			break
		}
		s.cfg.Delay.Delay(ctx, s.cfg.Consult.Min, s.cfg.Consult.Max)
		s.elves.ReportConsulted(id)
	}
	return nil
}
