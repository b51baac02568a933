package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// HSVBound is an inclusive per-channel bound in OpenCV's HSV space
// (H in [0,180), S and V in [0,255]).
type HSVBound struct {
	H float64
	S float64
	V float64
}

func (b HSVBound) scalar() gocv.Scalar {
	return gocv.NewScalar(b.H, b.S, b.V, 0)
}

type ColorDetectParam struct {
	Img       gocv.Mat // BGR image, consumed read-only
	LowBound  HSVBound
	HighBound HSVBound
}

// ColorDetector finds regions of a given color class. Detect returns the
// bounding box of the largest matching region; MaskSum only measures how
// much of the color is present. "Not found" is a normal result, never an
// error.
type ColorDetector interface {
	Detect(param *ColorDetectParam) (image.Rectangle, bool)
	MaskSum(param *ColorDetectParam) int
	Mask(param *ColorDetectParam) gocv.Mat
}

type ColorDetectorImpl struct {
}

func NewColorDetector() ColorDetector {
	return &ColorDetectorImpl{}
}

// Detect masks pixels inside the HSV range and returns the bounding box of
// the largest-area external contour. ok is false when the mask has no
// contours.
func (d *ColorDetectorImpl) Detect(param *ColorDetectParam) (image.Rectangle, bool) {
	mask := d.mask(param)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return image.Rectangle{}, false
	}

	var (
		bestArea float64
		bestIdx  = -1
	)
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if bestIdx < 0 || area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}

	return gocv.BoundingRect(contours.At(bestIdx)), true
}

// MaskSum returns the pixel sum of the in-range mask. The mask is binary
// 0/255, so the sum is the matching pixel count times 255; thresholds are
// expressed against that sum.
func (d *ColorDetectorImpl) MaskSum(param *ColorDetectParam) int {
	mask := d.mask(param)
	defer mask.Close()

	return gocv.CountNonZero(mask) * 255
}

// Mask exposes the raw in-range mask for debug rendering. The caller owns
// the returned Mat.
func (d *ColorDetectorImpl) Mask(param *ColorDetectParam) gocv.Mat {
	return d.mask(param)
}

func (d *ColorDetectorImpl) mask(param *ColorDetectParam) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(param.Img, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv, param.LowBound.scalar(), param.HighBound.scalar(), &mask)
	return mask
}
