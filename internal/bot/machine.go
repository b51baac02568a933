package bot

import (
	"image"
	"log"
	"time"

	"fishing-bot/internal/pkg/utils"
)

// StateID identifies one of the machine's three states.
type StateID int

const (
	StatePullingRod StateID = iota
	StateSearchingFish
	StateWaitAfterClick
)

func (s StateID) String() string {
	switch s {
	case StatePullingRod:
		return "PULLING_ROD"
	case StateSearchingFish:
		return "SEARCHING_FISH"
	case StateWaitAfterClick:
		return "WAIT_AFTER_CLICK"
	default:
		return "UNKNOWN"
	}
}

type IntentKind int

const (
	// IntentPressKey presses and releases a key with a random delay in
	// [MinDelay, MaxDelay] between down and up.
	IntentPressKey IntentKind = iota
	// IntentClick moves the cursor to (X, Y) and left-clicks, with a random
	// delay between button down and up.
	IntentClick
	// IntentWait pauses intent execution for a random duration.
	IntentWait
)

// Intent is a high-level action the machine wants performed. The machine
// never touches input devices itself; the loop hands intents to the
// actuation sink.
type Intent struct {
	Kind     IntentKind
	Key      string
	X        int
	Y        int
	MinDelay time.Duration
	MaxDelay time.Duration
}

type MachineConfig struct {
	PullingRodTimeout     time.Duration
	SearchingTimeout      time.Duration
	WaitAfterClickTimeout time.Duration

	BaitKey  string // puts bait on the rod
	StartKey string // starts the minigame

	KeyDelayMin   time.Duration // hold time between key down and up
	KeyDelayMax   time.Duration
	ClickDelayMin time.Duration // hold time between button down and up
	ClickDelayMax time.Duration
	BaitWaitMin   time.Duration // pause between bait and start key
	BaitWaitMax   time.Duration
	CastWaitMin   time.Duration // pause after starting a new cast
	CastWaitMax   time.Duration

	// StrikesPerCatch is how many clicks within one episode count as a
	// caught fish, checked on every entry into PULLING_ROD.
	StrikesPerCatch int
}

func DefaultMachineConfig() MachineConfig {
	return MachineConfig{
		PullingRodTimeout:     4 * time.Second,
		SearchingTimeout:      15 * time.Second,
		WaitAfterClickTimeout: 1 * time.Second,
		BaitKey:               "1",
		StartKey:              "space",
		KeyDelayMin:           100 * time.Millisecond,
		KeyDelayMax:           300 * time.Millisecond,
		ClickDelayMin:         10 * time.Millisecond,
		ClickDelayMax:         50 * time.Millisecond,
		BaitWaitMin:           100 * time.Millisecond,
		BaitWaitMax:           200 * time.Millisecond,
		CastWaitMin:           1500 * time.Millisecond,
		CastWaitMax:           3 * time.Second,
		StrikesPerCatch:       3,
	}
}

// Machine is the timed three-state decision core. It is a plain value with
// no hidden callbacks: Tick consumes a snapshot and returns the intents to
// perform, so it can be driven by any clock and tested without a screen or
// input devices.
//
// Exactly one state is current at all times. Each state has a wall-clock
// deadline measured from its last entry; the deadline is checked at the
// start of every tick. Ticks against an unchanged snapshot are normal and
// must stay no-ops unless a transition condition holds.
type Machine struct {
	cfg      MachineConfig
	current  StateID
	deadline time.Time
	strikes  int // clicks landed in the current episode
	stats    Stats
}

// NewMachine starts in PULLING_ROD with its full timeout ahead.
func NewMachine(cfg MachineConfig, now time.Time) *Machine {
	m := &Machine{cfg: cfg, current: StatePullingRod}
	m.deadline = now.Add(cfg.PullingRodTimeout)
	return m
}

func (m *Machine) Current() StateID {
	return m.current
}

// Stats returns a copy of the counters for reporting.
func (m *Machine) Stats() Stats {
	return m.stats
}

// Tick advances the machine by one decision step.
func (m *Machine) Tick(now time.Time, snap FeatureSnapshot) []Intent {
	if now.After(m.deadline) {
		log.Printf("[bot] timeout reached in %s\n", m.current)
		return m.onTimeout(now)
	}
	return m.onTick(now, snap)
}

func (m *Machine) onTick(now time.Time, snap FeatureSnapshot) []Intent {
	switch m.current {
	case StatePullingRod:
		// The minigame window appeared on its own, no need to re-cast.
		if snap.GameOn {
			m.transition(now, StateSearchingFish)
		}
		return nil

	case StateSearchingFish:
		if !snap.GameOn {
			// Window disappeared, abort the episode and pull the rod.
			m.transition(now, StatePullingRod)
			return nil
		}
		if snap.FishDetectable && snap.Fishable {
			center := utils.GetCenter(image.Rect(snap.X, snap.Y, snap.X+snap.Width, snap.Y+snap.Height))
			m.strikes++
			m.stats.ClicksSent++
			log.Printf("[bot] clicking fish at (%d, %d), strike %d\n", center.X, center.Y, m.strikes)
			m.transition(now, StateWaitAfterClick)
			return []Intent{{
				Kind:     IntentClick,
				X:        center.X,
				Y:        center.Y,
				MinDelay: m.cfg.ClickDelayMin,
				MaxDelay: m.cfg.ClickDelayMax,
			}}
		}
		return nil

	case StateWaitAfterClick:
		// Cool-down: the fish color flickers right after a hit and an
		// immediate re-click would double-count.
		return nil
	}
	return nil
}

func (m *Machine) onTimeout(now time.Time) []Intent {
	switch m.current {
	case StatePullingRod:
		// Rod pulled without a running minigame: put bait and start a new
		// cast, then watch for the window.
		log.Printf("[bot] putting bait and starting a new cast\n")
		m.transition(now, StateSearchingFish)
		return []Intent{
			{Kind: IntentPressKey, Key: m.cfg.BaitKey, MinDelay: m.cfg.KeyDelayMin, MaxDelay: m.cfg.KeyDelayMax},
			{Kind: IntentWait, MinDelay: m.cfg.BaitWaitMin, MaxDelay: m.cfg.BaitWaitMax},
			{Kind: IntentPressKey, Key: m.cfg.StartKey, MinDelay: m.cfg.KeyDelayMin, MaxDelay: m.cfg.KeyDelayMax},
			{Kind: IntentWait, MinDelay: m.cfg.CastWaitMin, MaxDelay: m.cfg.CastWaitMax},
		}

	case StateSearchingFish:
		// Failed episode: pull the rod without crediting a catch here; the
		// strike check runs on PULLING_ROD entry.
		m.transition(now, StatePullingRod)
		return nil

	case StateWaitAfterClick:
		m.transition(now, StateSearchingFish)
		return nil
	}
	return nil
}

// transition makes next the current state and restarts its deadline.
// Entering PULLING_ROD is the single point where the episode is settled:
// enough strikes credit a caught fish, and the counter resets either way.
func (m *Machine) transition(now time.Time, next StateID) {
	if next == StatePullingRod {
		if m.strikes >= m.cfg.StrikesPerCatch {
			m.stats.FishCaught++
			log.Printf("[bot] fish caught, totals: %s\n", m.stats)
		}
		m.strikes = 0
	}

	m.current = next
	m.deadline = now.Add(m.timeoutOf(next))
}

func (m *Machine) timeoutOf(state StateID) time.Duration {
	switch state {
	case StatePullingRod:
		return m.cfg.PullingRodTimeout
	case StateSearchingFish:
		return m.cfg.SearchingTimeout
	case StateWaitAfterClick:
		return m.cfg.WaitAfterClickTimeout
	}
	return 0
}
