package utils

import "image"

func GetCenter(rect image.Rectangle) image.Point {
	centerX := rect.Min.X + (rect.Max.X-rect.Min.X)/2
	centerY := rect.Min.Y + (rect.Max.Y-rect.Min.Y)/2
	return image.Point{X: centerX, Y: centerY}
}

func ToGlobalPoint(offset image.Point, local image.Point) image.Point {
	return image.Point{X: offset.X + local.X, Y: offset.Y + local.Y}
}

// ClampRect limits rect to bounds. The result may be empty when rect lies
// entirely outside bounds.
func ClampRect(rect image.Rectangle, bounds image.Rectangle) image.Rectangle {
	return rect.Intersect(bounds)
}
