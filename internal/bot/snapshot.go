package bot

import "sync"

// FeatureSnapshot is the per-frame feature tuple produced by one completed
// vision run. It is immutable after construction and is the only value
// shared between the capture/processing side and the decision side.
//
// Geometry is the fish bounding box in screen coordinates, all zero when
// the fish was not detected or the minigame window was not found.
type FeatureSnapshot struct {
	X      int
	Y      int
	Width  int
	Height int

	FishDetectable bool // fish bounding box was found
	Fishable       bool // capture circle is lit, a click would count
	GameOn         bool // minigame window located with enough confidence
}

// SnapshotCell is a single-slot latest-value handoff between the capture
// loop (writer) and the decision loop (reader). Newer snapshots overwrite
// unread ones; the lock is held only for the copy, never across vision
// processing or state actions.
type SnapshotCell struct {
	mu   sync.Mutex
	snap FeatureSnapshot
}

func (c *SnapshotCell) Store(snap FeatureSnapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

func (c *SnapshotCell) Load() FeatureSnapshot {
	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()
	return snap
}
