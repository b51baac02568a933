package vision

import (
	"gocv.io/x/gocv"

	"fishing-bot/internal/bot"
)

// FrameSource delivers raw frames. The returned Mat is owned by the
// caller of GetFrame; origin is the capture region's top-left corner in
// screen coordinates. GetFrame fails terminally when no more frames are
// available (window closed, video ended).
type FrameSource interface {
	GetFrame() (gocv.Mat, int, int, error)
}

// Stream pairs a FrameSource with the pipeline to act as the bot's
// snapshot source, shifting fish coordinates into screen space so clicks
// land regardless of where the game window sits.
type Stream struct {
	src    FrameSource
	vision *Vision
}

func NewStream(src FrameSource, v *Vision) *Stream {
	return &Stream{src: src, vision: v}
}

func (s *Stream) Next() (bot.FeatureSnapshot, error) {
	frame, originX, originY, err := s.src.GetFrame()
	if err != nil {
		return bot.FeatureSnapshot{}, err
	}
	defer frame.Close()

	snap, err := s.vision.Process(frame)
	if err != nil {
		return bot.FeatureSnapshot{}, err
	}

	if snap.FishDetectable {
		snap.X += originX
		snap.Y += originY
	}
	return snap, nil
}

// DebugFrame proxies the pipeline's last overlay for display.
func (s *Stream) DebugFrame() (gocv.Mat, bool) {
	return s.vision.DebugFrame()
}
