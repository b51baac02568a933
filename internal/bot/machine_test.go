package bot

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() MachineConfig {
	return DefaultMachineConfig()
}

func activeSnapshot() FeatureSnapshot {
	return FeatureSnapshot{GameOn: true}
}

func catchableSnapshot(x, y, w, h int) FeatureSnapshot {
	return FeatureSnapshot{
		X: x, Y: y, Width: w, Height: h,
		GameOn:         true,
		FishDetectable: true,
		Fishable:       true,
	}
}

// advance drives the machine into SEARCHING_FISH from the initial state.
func advanceToSearching(t *testing.T, m *Machine, now time.Time) {
	t.Helper()
	m.Tick(now, activeSnapshot())
	if m.Current() != StateSearchingFish {
		t.Fatalf("expected SEARCHING_FISH, got %s", m.Current())
	}
}

func TestStartsInPullingRod(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	if m.Current() != StatePullingRod {
		t.Fatalf("expected PULLING_ROD, got %s", m.Current())
	}
}

func TestPullingRodEntersSearchingWhenGameOn(t *testing.T) {
	m := NewMachine(testConfig(), t0)

	intents := m.Tick(t0.Add(time.Second), activeSnapshot())
	if len(intents) != 0 {
		t.Fatalf("expected no intents, got %v", intents)
	}
	if m.Current() != StateSearchingFish {
		t.Fatalf("expected SEARCHING_FISH, got %s", m.Current())
	}
}

func TestPullingRodTimeoutPreparesNewCast(t *testing.T) {
	cfg := testConfig()
	m := NewMachine(cfg, t0)

	intents := m.Tick(t0.Add(cfg.PullingRodTimeout+time.Millisecond), FeatureSnapshot{})
	if m.Current() != StateSearchingFish {
		t.Fatalf("expected SEARCHING_FISH after timeout, got %s", m.Current())
	}
	if len(intents) != 4 {
		t.Fatalf("expected 4 intents (bait, wait, start, wait), got %d", len(intents))
	}
	if intents[0].Kind != IntentPressKey || intents[0].Key != cfg.BaitKey {
		t.Errorf("intent 0 = %+v, want bait key press", intents[0])
	}
	if intents[1].Kind != IntentWait {
		t.Errorf("intent 1 = %+v, want wait", intents[1])
	}
	if intents[2].Kind != IntentPressKey || intents[2].Key != cfg.StartKey {
		t.Errorf("intent 2 = %+v, want start key press", intents[2])
	}
	if intents[3].Kind != IntentWait {
		t.Errorf("intent 3 = %+v, want wait", intents[3])
	}
}

func TestSearchingNoOpTickIsIdempotent(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	advanceToSearching(t, m, t0.Add(time.Second))

	snap := activeSnapshot() // game on, but no catchable fish
	for i := 0; i < 2; i++ {
		intents := m.Tick(t0.Add(2*time.Second), snap)
		if len(intents) != 0 {
			t.Fatalf("tick %d: expected no intents, got %v", i, intents)
		}
		if m.Current() != StateSearchingFish {
			t.Fatalf("tick %d: expected SEARCHING_FISH, got %s", i, m.Current())
		}
	}
	if stats := m.Stats(); stats.ClicksSent != 0 || stats.FishCaught != 0 {
		t.Fatalf("counters changed on no-op ticks: %+v", stats)
	}
	if m.strikes != 0 {
		t.Fatalf("strikes changed on no-op ticks: %d", m.strikes)
	}
}

func TestSearchingClicksFishCenter(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	advanceToSearching(t, m, t0.Add(time.Second))

	intents := m.Tick(t0.Add(2*time.Second), catchableSnapshot(100, 200, 40, 20))
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	click := intents[0]
	if click.Kind != IntentClick {
		t.Fatalf("expected click intent, got %+v", click)
	}
	if click.X != 120 || click.Y != 210 {
		t.Errorf("click at (%d, %d), want box center (120, 210)", click.X, click.Y)
	}
	if m.Current() != StateWaitAfterClick {
		t.Fatalf("expected WAIT_AFTER_CLICK, got %s", m.Current())
	}
	if stats := m.Stats(); stats.ClicksSent != 1 {
		t.Fatalf("clicks sent = %d, want 1", stats.ClicksSent)
	}
	if m.strikes != 1 {
		t.Fatalf("strikes = %d, want 1", m.strikes)
	}
}

func TestWaitAfterClickIsNoOpUntilTimeout(t *testing.T) {
	cfg := testConfig()
	m := NewMachine(cfg, t0)
	advanceToSearching(t, m, t0.Add(time.Second))
	m.Tick(t0.Add(2*time.Second), catchableSnapshot(0, 0, 10, 10))

	// Still inside the cool-down: even a catchable fish is ignored.
	intents := m.Tick(t0.Add(2*time.Second+500*time.Millisecond), catchableSnapshot(0, 0, 10, 10))
	if len(intents) != 0 {
		t.Fatalf("expected no intents during cool-down, got %v", intents)
	}
	if m.Current() != StateWaitAfterClick {
		t.Fatalf("expected WAIT_AFTER_CLICK, got %s", m.Current())
	}

	// Past the deadline: back to searching.
	m.Tick(t0.Add(2*time.Second).Add(cfg.WaitAfterClickTimeout+time.Millisecond), FeatureSnapshot{})
	if m.Current() != StateSearchingFish {
		t.Fatalf("expected SEARCHING_FISH after cool-down, got %s", m.Current())
	}
}

func TestEpisodeCreditAfterThreeStrikes(t *testing.T) {
	cfg := testConfig()
	m := NewMachine(cfg, t0)
	now := t0.Add(time.Second)
	advanceToSearching(t, m, now)

	for i := 0; i < 3; i++ {
		now = now.Add(time.Second)
		intents := m.Tick(now, catchableSnapshot(50, 50, 10, 10))
		if len(intents) != 1 || intents[0].Kind != IntentClick {
			t.Fatalf("strike %d: expected a click, got %v", i+1, intents)
		}
		// Let the cool-down expire.
		now = now.Add(cfg.WaitAfterClickTimeout + time.Millisecond)
		m.Tick(now, FeatureSnapshot{GameOn: true})
		if m.Current() != StateSearchingFish {
			t.Fatalf("strike %d: expected SEARCHING_FISH, got %s", i+1, m.Current())
		}
	}
	if m.strikes != 3 {
		t.Fatalf("strikes = %d, want 3", m.strikes)
	}

	// Timeout out of SEARCHING_FISH settles the episode.
	now = now.Add(cfg.SearchingTimeout + time.Millisecond)
	m.Tick(now, FeatureSnapshot{GameOn: true})
	if m.Current() != StatePullingRod {
		t.Fatalf("expected PULLING_ROD, got %s", m.Current())
	}

	stats := m.Stats()
	if stats.FishCaught != 1 {
		t.Errorf("fish caught = %d, want 1", stats.FishCaught)
	}
	if stats.ClicksSent != 3 {
		t.Errorf("clicks sent = %d, want 3", stats.ClicksSent)
	}
	if m.strikes != 0 {
		t.Errorf("strikes = %d, want 0 after settling", m.strikes)
	}
}

func TestAbortWithoutEnoughStrikesYieldsNoCatch(t *testing.T) {
	m := NewMachine(testConfig(), t0)
	now := t0.Add(time.Second)
	advanceToSearching(t, m, now)

	// One strike, then the window disappears.
	now = now.Add(time.Second)
	m.Tick(now, catchableSnapshot(50, 50, 10, 10))
	now = now.Add(2 * time.Second)
	m.Tick(now, FeatureSnapshot{GameOn: true}) // cool-down expired, back to searching

	if m.strikes != 1 {
		t.Fatalf("strikes = %d, want 1", m.strikes)
	}

	now = now.Add(time.Millisecond)
	m.Tick(now, FeatureSnapshot{}) // game off: abort to PULLING_ROD
	if m.Current() != StatePullingRod {
		t.Fatalf("expected PULLING_ROD, got %s", m.Current())
	}

	stats := m.Stats()
	if stats.FishCaught != 0 {
		t.Errorf("fish caught = %d, want 0", stats.FishCaught)
	}
	if m.strikes != 0 {
		t.Errorf("strikes = %d, want 0 after entering PULLING_ROD", m.strikes)
	}
}

func TestSearchingTimeoutAbortsEpisode(t *testing.T) {
	cfg := testConfig()
	m := NewMachine(cfg, t0)
	now := t0.Add(time.Second)
	advanceToSearching(t, m, now)

	intents := m.Tick(now.Add(cfg.SearchingTimeout+time.Millisecond), activeSnapshot())
	if len(intents) != 0 {
		t.Fatalf("expected no intents on abort, got %v", intents)
	}
	if m.Current() != StatePullingRod {
		t.Fatalf("expected PULLING_ROD, got %s", m.Current())
	}
	if stats := m.Stats(); stats.FishCaught != 0 {
		t.Fatalf("fish caught = %d, want 0", stats.FishCaught)
	}
}
