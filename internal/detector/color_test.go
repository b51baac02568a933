package detector

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

// measureHSV converts a single BGR color through the same path the detector
// uses, so the tests never hand-compute OpenCV's HSV rounding.
func measureHSV(t *testing.T, b, g, r float64) HSVBound {
	t.Helper()
	px := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, 0), 1, 1, gocv.MatTypeCV8UC3)
	defer px.Close()
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(px, &hsv, gocv.ColorBGRToHSV)
	return HSVBound{
		H: float64(hsv.GetUCharAt(0, 0)),
		S: float64(hsv.GetUCharAt(0, 1)),
		V: float64(hsv.GetUCharAt(0, 2)),
	}
}

// muted blue-gray, hue and saturation comfortably inside [1, 250]
var testBGR = [3]float64{160, 120, 80}

func fillRect(img *gocv.Mat, r image.Rectangle) {
	gocv.Rectangle(img, r, color.RGBA{R: uint8(testBGR[2]), G: uint8(testBGR[1]), B: uint8(testBGR[0])}, -1)
}

func TestDetectAtInclusiveBounds(t *testing.T) {
	bound := measureHSV(t, testBGR[0], testBGR[1], testBGR[2])

	img := background(100, 120)
	defer img.Close()
	want := image.Rect(30, 40, 50, 60)
	fillRect(&img, want)

	d := NewColorDetector()
	got, ok := d.Detect(&ColorDetectParam{Img: img, LowBound: bound, HighBound: bound})
	if !ok {
		t.Fatal("block not detected with bounds equal to its exact color")
	}
	if got != want {
		t.Fatalf("bounding box = %v, want %v", got, want)
	}
}

func TestDetectExcludesColorBelowLowBound(t *testing.T) {
	bound := measureHSV(t, testBGR[0], testBGR[1], testBGR[2])
	if bound.H > 245 || bound.S > 245 || bound.V > 245 {
		t.Fatalf("test color saturates a channel: %+v", bound)
	}
	low := HSVBound{H: bound.H + 1, S: bound.S + 1, V: bound.V + 1}
	high := HSVBound{H: bound.H + 10, S: bound.S + 10, V: bound.V + 10}

	img := background(100, 120)
	defer img.Close()
	fillRect(&img, image.Rect(30, 40, 50, 60))

	d := NewColorDetector()
	if _, ok := d.Detect(&ColorDetectParam{Img: img, LowBound: low, HighBound: high}); ok {
		t.Fatal("detected a color strictly below the low bound")
	}
}

func TestDetectPicksLargestRegion(t *testing.T) {
	bound := measureHSV(t, testBGR[0], testBGR[1], testBGR[2])

	img := background(100, 120)
	defer img.Close()
	fillRect(&img, image.Rect(5, 5, 15, 15))
	want := image.Rect(60, 30, 90, 50)
	fillRect(&img, want)

	d := NewColorDetector()
	got, ok := d.Detect(&ColorDetectParam{Img: img, LowBound: bound, HighBound: bound})
	if !ok {
		t.Fatal("no region detected")
	}
	if got != want {
		t.Fatalf("bounding box = %v, want the larger region %v", got, want)
	}
}

func TestMaskSumCountsMatchingPixels(t *testing.T) {
	bound := measureHSV(t, testBGR[0], testBGR[1], testBGR[2])

	img := background(100, 120)
	defer img.Close()
	fillRect(&img, image.Rect(30, 40, 50, 60)) // 20x20 pixels

	d := NewColorDetector()
	param := &ColorDetectParam{Img: img, LowBound: bound, HighBound: bound}
	if got, want := d.MaskSum(param), 20*20*255; got != want {
		t.Fatalf("MaskSum = %d, want %d", got, want)
	}

	empty := &ColorDetectParam{
		Img:       img,
		LowBound:  HSVBound{H: bound.H + 1, S: bound.S + 1, V: bound.V + 1},
		HighBound: HSVBound{H: bound.H + 10, S: bound.S + 10, V: bound.V + 10},
	}
	if got := d.MaskSum(empty); got != 0 {
		t.Fatalf("MaskSum on an out-of-range image = %d, want 0", got)
	}
}

func TestMaskMatchesDetectGeometry(t *testing.T) {
	bound := measureHSV(t, testBGR[0], testBGR[1], testBGR[2])

	img := background(100, 120)
	defer img.Close()
	fillRect(&img, image.Rect(30, 40, 50, 60))

	d := NewColorDetector()
	mask := d.Mask(&ColorDetectParam{Img: img, LowBound: bound, HighBound: bound})
	defer mask.Close()

	if mask.Rows() != img.Rows() || mask.Cols() != img.Cols() {
		t.Fatalf("mask is %dx%d, want frame size %dx%d", mask.Cols(), mask.Rows(), img.Cols(), img.Rows())
	}
	if got := gocv.CountNonZero(mask); got != 20*20 {
		t.Fatalf("mask has %d set pixels, want %d", got, 20*20)
	}
}
