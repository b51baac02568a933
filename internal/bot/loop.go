package bot

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"fishing-bot/internal/pkg/sleeper"
)

// SnapshotSource produces one FeatureSnapshot per captured frame. It fails
// terminally when no more frames are available; detection misses are not
// errors, they arrive as snapshots with the corresponding flags unset.
type SnapshotSource interface {
	Next() (FeatureSnapshot, error)
}

// ActuationSink turns intents into real input events. Implementations
// insert a uniformly random delay between sub-events (key down/up, button
// down/up) drawn from the given bounds.
type ActuationSink interface {
	PressKey(key string, minDelay, maxDelay time.Duration)
	MoveCursor(x, y int)
	Click(minDelay, maxDelay time.Duration)
}

// Loop glues the snapshot source to the machine and the sink.
//
// In fast (synchronous) mode capture, processing and the decision tick run
// in strict sequence on one goroutine. Otherwise the capture/processing
// loop and a fixed-rate decision loop run independently, meeting only at
// the SnapshotCell: the decision loop always acts on the most recently
// completed snapshot, repeating ticks against it when frames lag behind.
// Dropped frames under load are expected, not an error.
type Loop struct {
	src      SnapshotSource
	machine  *Machine
	sink     ActuationSink
	interval time.Duration // decision tick rate in concurrent mode
	fast     bool

	cell   SnapshotCell
	active atomic.Bool // gates intent execution, toggled from the debug UI

	// AfterFrame, when set, runs after every processed frame on the
	// capture goroutine. Used for debug rendering; must not block long.
	AfterFrame func()
}

func NewLoop(src SnapshotSource, machine *Machine, sink ActuationSink, interval time.Duration, fast bool) *Loop {
	l := &Loop{
		src:      src,
		machine:  machine,
		sink:     sink,
		interval: interval,
		fast:     fast,
	}
	l.active.Store(true)
	return l
}

// ToggleActuation flips intent execution on or off. The machine keeps
// ticking either way so its view of the minigame stays current.
func (l *Loop) ToggleActuation() bool {
	for {
		val := l.active.Load()
		if l.active.CompareAndSwap(val, !val) {
			log.Printf("[bot] actuation enabled: %v\n", !val)
			return !val
		}
	}
}

// Run blocks until the source is exhausted (the error is propagated) or
// ctx is cancelled (returns nil, an orderly stop). The caller reports
// final stats in both cases.
func (l *Loop) Run(ctx context.Context) error {
	if l.fast {
		return l.runSync(ctx)
	}
	return l.runConcurrent(ctx)
}

func (l *Loop) runSync(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		snap, err := l.src.Next()
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		l.tick(snap)

		if l.AfterFrame != nil {
			l.AfterFrame()
		}
	}
}

func (l *Loop) runConcurrent(ctx context.Context) error {
	captureCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		// This goroutine owns writing the cell; the decision loop only
		// reads. The lock inside the cell covers just the copy.
		for captureCtx.Err() == nil {
			snap, err := l.src.Next()
			if err != nil {
				errCh <- err
				return
			}
			l.cell.Store(snap)

			if l.AfterFrame != nil {
				l.AfterFrame()
			}
		}
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return fmt.Errorf("capture: %w", err)
		case <-ticker.C:
			l.tick(l.cell.Load())
		}
	}
}

func (l *Loop) tick(snap FeatureSnapshot) {
	intents := l.machine.Tick(time.Now(), snap)
	if len(intents) == 0 || !l.active.Load() {
		return
	}

	for _, in := range intents {
		switch in.Kind {
		case IntentPressKey:
			l.sink.PressKey(in.Key, in.MinDelay, in.MaxDelay)
		case IntentClick:
			l.sink.MoveCursor(in.X, in.Y)
			l.sink.Click(in.MinDelay, in.MaxDelay)
		case IntentWait:
			sleeper.SleepRandom(in.MinDelay, in.MaxDelay)
		}
	}
}
