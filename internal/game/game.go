package game

import (
	"errors"
	"log"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/tailscale/win"
	"gocv.io/x/gocv"
)

// ErrStreamEnded reports that no more frames can be captured. It is
// terminal for the frame loop; the process reports stats and exits.
var ErrStreamEnded = errors.New("frame source exhausted")

// Game wraps the game process window: lookup, sizing and screen capture.
// It is the live FrameSource for the vision pipeline.
type Game struct {
	Pid   int
	Name  string
	Title string
	Rect  *GameRect
}

// Screen coordinates, origin (0, 0) at the top-left corner.
type GameRect struct {
	x int
	y int
	w int
	h int
}

// NewGame identifies the game by process name (e.g. "metin2client.exe")
// and window title.
func NewGame(name string, title string) (*Game, error) {
	if len(name) == 0 {
		return nil, errors.New("game process name must not be empty")
	}

	g := &Game{Name: name, Title: title}
	return g, nil
}

// Initialize looks up the process, brings the window to the front and
// pins it to the given size so the template scale range can stay narrow.
// A non-positive size keeps whatever size the window has.
func (g *Game) Initialize(w, h int32) bool {
	if _, err := g.GetPid(); err != nil {
		return false
	}
	log.Printf("[game] window title:%s pid:%d process:%s\n", g.Title, g.Pid, g.Name)

	g.Active()
	time.Sleep(1 * time.Second)

	if w > 0 && h > 0 {
		if _, err := g.Resize(w, h); err != nil {
			log.Printf("[game] %v, keeping the current size\n", err)
		}
	}

	g.GetRect()
	return true
}

func (g *Game) Active() {
	robotgo.ActivePid(g.Pid)
}

func (g *Game) GetPid() (int, error) {
	if g.Pid != 0 {
		return g.Pid, nil
	}

	pidList, err := robotgo.FindIds(g.Name)
	if err != nil || len(pidList) <= 0 {
		log.Println("[game] game process not found, start the game first")
		return -1, errors.New("game process not found")
	}

	pid := pidList[0]
	g.Pid = pid

	return pid, nil
}

func (g *Game) GetRect() (*GameRect, error) {
	if g.Rect != nil {
		return g.Rect, nil
	}
	x, y, w, h := robotgo.GetBounds(g.Pid)

	rect := &GameRect{
		x: x, y: y, w: w, h: h,
	}
	g.Rect = rect
	return rect, nil
}

// GetFrame captures the window region as a BGR Mat plus the window origin
// in screen coordinates. The caller owns the Mat.
func (g *Game) GetFrame() (gocv.Mat, int, int, error) {
	rect, err := g.GetRect()
	if err != nil {
		return gocv.Mat{}, 0, 0, err
	}
	if rect.w <= 0 || rect.h <= 0 {
		return gocv.Mat{}, 0, 0, ErrStreamEnded
	}

	bitmap := robotgo.CaptureScreen(rect.x, rect.y, rect.w, rect.h)
	if bitmap == nil {
		return gocv.Mat{}, 0, 0, ErrStreamEnded
	}
	defer robotgo.FreeBitmap(bitmap)

	img := robotgo.ToImage(bitmap)
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, 0, 0, err
	}

	// Capture is RGB ordered; the pipeline works in BGR.
	gocv.CvtColor(mat, &mat, gocv.ColorRGBToBGR)
	return mat, rect.x, rect.y, nil
}

// Resize puts the window at a fixed size so the template scale range stays
// small.
func (g *Game) Resize(w int32, h int32) (bool, error) {
	screenWidth, screenHeight := robotgo.GetScreenSize()
	rect, _ := g.GetRect()
	log.Printf("[game] screen: %d x %d window: %d x %d\n", screenWidth, screenHeight, rect.w, rect.h)

	hwnd := robotgo.FindWindow(g.Title)
	val := win.SetWindowPos(hwnd, win.HWND_TOP, 0, 0, w, h, win.SWP_SHOWWINDOW)
	if !val {
		return false, errors.New("window resize failed")
	}

	g.refreshRect()

	rect = g.Rect
	log.Printf("[game] window after resize: %d x %d\n", rect.w, rect.h)
	return val, nil
}

func (g *Game) refreshRect() error {
	g.Rect = nil
	g.GetRect()

	return nil
}
