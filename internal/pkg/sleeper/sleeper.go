package sleeper

import (
	"math/rand"
	"time"
)

func Sleep(duration time.Duration) {
	time.Sleep(duration)
}

// SleepRandom sleeps for a uniformly random duration in [min, max].
// Used between key/mouse sub-events so inputs do not look machine-timed.
func SleepRandom(min time.Duration, max time.Duration) {
	if max <= min {
		time.Sleep(min)
		return
	}
	delta := time.Duration(rand.Int63n(int64(max - min + 1)))
	time.Sleep(min + delta)
}
