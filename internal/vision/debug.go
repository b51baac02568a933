package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"fishing-bot/internal/detector"
)

// Debug rendering is a side channel only: it never changes the snapshot
// and costs nothing when Debug is off.

var (
	dbgGreen = color.RGBA{G: 155}
	dbgRed   = color.RGBA{R: 155}
)

// DebugFrame returns the overlay built for the last processed frame. The
// Mat stays owned by Vision and is valid until the next Process call.
func (v *Vision) DebugFrame() (gocv.Mat, bool) {
	return v.dbgFrame, v.hasDbg
}

// renderActive blurs the frame and pastes what the detectors saw over the
// crop region: the capture-circle mask in green when lit (red when not)
// and the fish bounding box.
func (v *Vision) renderActive(frame gocv.Mat, crop image.Rectangle, catchParam, fishParam *detector.ColorDetectParam, fishable bool, fishRect image.Rectangle, fishFound bool) {
	if !v.cfg.Debug {
		return
	}

	view := catchParam.Img.Clone()

	circleColor := dbgRed
	if fishable {
		circleColor = dbgGreen
	}
	v.paintMask(&view, catchParam, circleColor)

	if fishFound {
		gocv.Rectangle(&view, fishRect, color.RGBA{R: 255}, 2)
	}

	v.overlay(frame, view, crop)
	view.Close()
}

// renderInactive shows only the blurred frame with the attempted crop, so
// a misdetected window is visible while tuning.
func (v *Vision) renderInactive(frame gocv.Mat, crop image.Rectangle) {
	if !v.cfg.Debug {
		return
	}

	v.resetDebug(frame)
	if !crop.Empty() {
		gocv.Rectangle(&v.dbgFrame, crop, color.RGBA{R: 255}, 2)
	}
}

func (v *Vision) paintMask(view *gocv.Mat, param *detector.ColorDetectParam, c color.RGBA) {
	mask := v.colors.Mask(param)
	defer mask.Close()

	solid := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		view.Rows(), view.Cols(), view.Type())
	defer solid.Close()

	solid.CopyToWithMask(view, mask)
}

func (v *Vision) overlay(frame gocv.Mat, view gocv.Mat, crop image.Rectangle) {
	v.resetDebug(frame)

	target := v.dbgFrame.Region(crop)
	view.CopyTo(&target)
	target.Close()
}

func (v *Vision) resetDebug(frame gocv.Mat) {
	if v.hasDbg {
		v.dbgFrame.Close()
	}
	v.dbgFrame = gocv.NewMat()
	gocv.Blur(frame, &v.dbgFrame, image.Pt(8, 8))
	v.hasDbg = true
}
