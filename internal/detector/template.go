package detector

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

var (
	// ErrInvalidConfig reports an unusable locator configuration, e.g. a
	// downsample factor above 1 (only downscaling is supported).
	ErrInvalidConfig = errors.New("invalid locator config")

	// ErrNoCandidateScale reports that the template was larger than the
	// frame at every tested scale, so no match could be evaluated.
	ErrNoCandidateScale = errors.New("no candidate scale")
)

// MatchResult is the best-scoring match in full-resolution frame
// coordinates. Confidence is the normalized correlation score, a relative
// ranking signal rather than a probability.
type MatchResult struct {
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float32
	Scale      float64
}

func (r *MatchResult) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

type TemplateLocateParam struct {
	Img gocv.Mat // BGR frame, consumed read-only
}

type TemplateLocator interface {
	Locate(param *TemplateLocateParam) (*MatchResult, error)
	Close()
}

type TemplateLocatorImpl struct {
	template     gocv.Mat // grayscale, already downsampled by resizeFactor
	fullWidth    int      // template size before downsampling
	fullHeight   int
	lowScale     float64
	highScale    float64
	numScales    int
	resizeFactor float64
}

// LoadTemplate reads the reference image and pre-smooths it with an
// edge-preserving blur, matching the smoothing applied to incoming frames.
func LoadTemplate(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return gocv.Mat{}, fmt.Errorf("unable to load template image: %s", path)
	}

	smoothed := gocv.NewMat()
	gocv.BilateralFilter(img, &smoothed, 7, 85, 85)
	img.Close()
	return smoothed, nil
}

// NewTemplateLocator builds a multi-scale locator for a fixed template.
// The template Mat is cloned; the caller keeps ownership of its copy.
// numScales linearly spaced scales in [lowScale, highScale] are evaluated
// per frame, with both frame and template downsampled by resizeFactor
// (<= 1) first to bound the per-frame cost.
func NewTemplateLocator(template gocv.Mat, lowScale, highScale float64, numScales int, resizeFactor float64) (TemplateLocator, error) {
	if template.Empty() {
		return nil, fmt.Errorf("%w: empty template", ErrInvalidConfig)
	}
	if resizeFactor <= 0 || resizeFactor > 1 {
		return nil, fmt.Errorf("%w: resize factor %v, only downscaling is supported", ErrInvalidConfig, resizeFactor)
	}
	if numScales < 1 {
		return nil, fmt.Errorf("%w: num scales %d", ErrInvalidConfig, numScales)
	}
	if lowScale <= 0 || highScale < lowScale {
		return nil, fmt.Errorf("%w: scale range [%v, %v]", ErrInvalidConfig, lowScale, highScale)
	}

	gray := gocv.NewMat()
	gocv.CvtColor(template, &gray, gocv.ColorBGRToGray)

	l := &TemplateLocatorImpl{
		fullWidth:    template.Cols(),
		fullHeight:   template.Rows(),
		lowScale:     lowScale,
		highScale:    highScale,
		numScales:    numScales,
		resizeFactor: resizeFactor,
	}

	if resizeFactor < 1 {
		resized := gocv.NewMat()
		gocv.Resize(gray, &resized,
			image.Pt(int(float64(gray.Cols())*resizeFactor), int(float64(gray.Rows())*resizeFactor)),
			0, 0, gocv.InterpolationArea)
		gray.Close()
		l.template = resized
	} else {
		l.template = gray
	}

	if l.template.Cols() < 1 || l.template.Rows() < 1 {
		l.template.Close()
		return nil, fmt.Errorf("%w: template vanishes at resize factor %v", ErrInvalidConfig, resizeFactor)
	}
	return l, nil
}

// Locate runs normalized cross-correlation matching at every configured
// scale, from the highest down, and keeps the single best score. The
// winning location and size are mapped back to full-resolution frame
// coordinates.
func (l *TemplateLocatorImpl) Locate(param *TemplateLocateParam) (*MatchResult, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(param.Img, &gray, gocv.ColorBGRToGray)

	if l.resizeFactor < 1 {
		gocv.Resize(gray, &gray,
			image.Pt(int(float64(gray.Cols())*l.resizeFactor), int(float64(gray.Rows())*l.resizeFactor)),
			0, 0, gocv.InterpolationArea)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	var (
		found    bool
		bestVal  float32
		bestLoc  image.Point
		bestScal float64
	)

	for i := 0; i < l.numScales; i++ {
		scale := l.scaleAt(i)

		resized := gocv.NewMat()
		gocv.Resize(gray, &resized,
			image.Pt(int(float64(gray.Cols())*scale), int(float64(gray.Rows())*scale)),
			0, 0, gocv.InterpolationArea)

		// Scales run high to low, so once the frame is smaller than the
		// template every remaining scale is too.
		if resized.Rows() < l.template.Rows() || resized.Cols() < l.template.Cols() {
			resized.Close()
			break
		}

		result := gocv.NewMat()
		gocv.MatchTemplate(resized, l.template, &result, gocv.TmCcoeffNormed, mask)
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
		result.Close()
		resized.Close()

		// Strictly-greater keeps the first (highest) scale on a tie.
		if !found || maxVal > bestVal {
			found = true
			bestVal = maxVal
			bestLoc = maxLoc
			bestScal = scale
		}
	}

	if !found {
		return nil, ErrNoCandidateScale
	}

	inv := 1 / bestScal
	return &MatchResult{
		X:          int(float64(bestLoc.X) * inv / l.resizeFactor),
		Y:          int(float64(bestLoc.Y) * inv / l.resizeFactor),
		Width:      int(float64(l.fullWidth) * inv),
		Height:     int(float64(l.fullHeight) * inv),
		Confidence: bestVal,
		Scale:      bestScal,
	}, nil
}

func (l *TemplateLocatorImpl) Close() {
	l.template.Close()
}

func (l *TemplateLocatorImpl) scaleAt(i int) float64 {
	if l.numScales == 1 {
		return l.lowScale
	}
	step := (l.highScale - l.lowScale) / float64(l.numScales-1)
	return l.highScale - step*float64(i)
}
