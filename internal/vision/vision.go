package vision

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"fishing-bot/internal/bot"
	"fishing-bot/internal/detector"
	"fishing-bot/internal/pkg/utils"
)

// Config holds the fixed detection parameters. Defaults live in the config
// package; the values mirror what works against the game's fishing window.
type Config struct {
	// GameThreshold is the correlation the border template must exceed for
	// the minigame to count as active.
	GameThreshold float32

	// BorderOffset crops the located window inward on all sides;
	// BorderOffsetTitle additionally skips the title bar at the top.
	BorderOffset      int
	BorderOffsetTitle int

	FishLowBound   detector.HSVBound
	FishHighBound  detector.HSVBound
	CatchLowBound  detector.HSVBound
	CatchHighBound detector.HSVBound

	// CatchSumThreshold is the mask pixel sum above which the capture
	// circle counts as lit.
	CatchSumThreshold int

	Debug bool
}

// Vision turns one frame into one FeatureSnapshot: locate the minigame
// border template, crop to the playable area, then color-match the capture
// circle and the fish inside it.
type Vision struct {
	locator detector.TemplateLocator
	colors  detector.ColorDetector
	cfg     Config

	dbgFrame gocv.Mat
	hasDbg   bool
}

func New(locator detector.TemplateLocator, cfg Config) *Vision {
	return &Vision{
		locator: locator,
		colors:  detector.NewColorDetector(),
		cfg:     cfg,
	}
}

// Process extracts the feature tuple from frame. The frame is read-only
// and stays owned by the caller. A frame where the minigame cannot be
// located (low confidence, or no scale fits during window transitions) is
// a normal "not active" result, not an error.
func (v *Vision) Process(frame gocv.Mat) (bot.FeatureSnapshot, error) {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.BilateralFilter(frame, &blurred, 7, 85, 85)

	match, err := v.locator.Locate(&detector.TemplateLocateParam{Img: blurred})
	if errors.Is(err, detector.ErrNoCandidateScale) {
		// Malformed frames show up while the window resizes or closes.
		v.renderInactive(frame, image.Rectangle{})
		return bot.FeatureSnapshot{}, nil
	}
	if err != nil {
		return bot.FeatureSnapshot{}, err
	}

	crop := v.cropRect(match, frame)

	if match.Confidence <= v.cfg.GameThreshold || crop.Empty() {
		v.renderInactive(frame, crop)
		return bot.FeatureSnapshot{}, nil
	}

	region := blurred.Region(crop)
	defer region.Close()

	// Circle first: how lit the capture zone is, regardless of the fish.
	catchParam := &detector.ColorDetectParam{
		Img:       region,
		LowBound:  v.cfg.CatchLowBound,
		HighBound: v.cfg.CatchHighBound,
	}
	fishable := v.colors.MaskSum(catchParam) > v.cfg.CatchSumThreshold

	fishParam := &detector.ColorDetectParam{
		Img:       region,
		LowBound:  v.cfg.FishLowBound,
		HighBound: v.cfg.FishHighBound,
	}
	fishRect, fishFound := v.colors.Detect(fishParam)

	snap := bot.FeatureSnapshot{
		GameOn:         true,
		Fishable:       fishable,
		FishDetectable: fishFound,
	}
	if fishFound {
		global := utils.ToGlobalPoint(crop.Min, fishRect.Min)
		snap.X = global.X
		snap.Y = global.Y
		snap.Width = fishRect.Dx()
		snap.Height = fishRect.Dy()
	}

	v.renderActive(frame, crop, catchParam, fishParam, fishable, fishRect, fishFound)
	return snap, nil
}

// cropRect shrinks the matched window by the border offsets and clamps the
// result to the frame, so a window that hangs off-screen degrades instead
// of failing.
func (v *Vision) cropRect(match *detector.MatchResult, frame gocv.Mat) image.Rectangle {
	off := v.cfg.BorderOffset
	crop := image.Rect(
		match.X+off,
		match.Y+off+v.cfg.BorderOffsetTitle,
		match.X+match.Width-off,
		match.Y+match.Height-off,
	)
	return utils.ClampRect(crop, image.Rect(0, 0, frame.Cols(), frame.Rows()))
}

func (v *Vision) Close() {
	if v.hasDbg {
		v.dbgFrame.Close()
		v.hasDbg = false
	}
}
