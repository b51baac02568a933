package input

import (
	"time"

	"github.com/go-vgo/robotgo"

	"fishing-bot/internal/pkg/sleeper"
)

// RobotgoSink drives the real keyboard and mouse. Every press holds for a
// random duration inside the given bounds before releasing.
type RobotgoSink struct{}

func NewRobotgoSink() *RobotgoSink {
	return &RobotgoSink{}
}

func (s *RobotgoSink) PressKey(key string, minDelay, maxDelay time.Duration) {
	robotgo.KeyDown(key)
	sleeper.SleepRandom(minDelay, maxDelay)
	robotgo.KeyUp(key)
}

func (s *RobotgoSink) MoveCursor(x, y int) {
	robotgo.Move(x, y)
}

func (s *RobotgoSink) Click(minDelay, maxDelay time.Duration) {
	robotgo.Toggle("left")
	sleeper.SleepRandom(minDelay, maxDelay)
	robotgo.Toggle("left", "up")
}

// ReleaseAll lifts the given keys and the left mouse button. Called from
// the panic handler so nothing stays held when the process dies mid-press.
func ReleaseAll(keys ...string) {
	for _, key := range keys {
		robotgo.KeyUp(key)
	}
	robotgo.Toggle("left", "up")
}
