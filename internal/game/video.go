package game

import (
	"fmt"

	"gocv.io/x/gocv"
)

// VideoSource plays a recording through the pipeline, for tuning detection
// without the game running. Frames come out in BGR with a zero origin.
type VideoSource struct {
	cap *gocv.VideoCapture
}

func NewVideoSource(path string) (*VideoSource, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open video %s: %w", path, err)
	}
	return &VideoSource{cap: cap}, nil
}

func (v *VideoSource) GetFrame() (gocv.Mat, int, int, error) {
	frame := gocv.NewMat()
	if ok := v.cap.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.Mat{}, 0, 0, ErrStreamEnded
	}
	return frame, 0, 0, nil
}

func (v *VideoSource) Close() error {
	return v.cap.Close()
}
