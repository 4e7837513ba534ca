package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ivlev/multicam/internal/capture"
)

// Window shows the output stream in a resizable OpenCV window.
// It doubles as the quit signal: q or Esc pressed in the window ends the run.
type Window struct {
	win     *gocv.Window
	scratch gocv.Mat
	quit    bool
}

const keyEsc = 27

func NewWindow(name string, out image.Point) *Window {
	win := gocv.NewWindow(name)
	win.ResizeWindow(out.X, out.Y)
	return &Window{
		win:     win,
		scratch: gocv.NewMat(),
	}
}

func (w *Window) Present(frame image.Image, crop image.Rectangle, out image.Point) error {
	src, owned, err := toMat(frame)
	if err != nil {
		return err
	}
	if owned {
		defer src.Close()
	}

	// Mat coordinates always start at the origin
	crop = crop.Sub(frame.Bounds().Min).Intersect(image.Rect(0, 0, src.Cols(), src.Rows()))
	if crop.Empty() {
		return fmt.Errorf("window: empty crop for %dx%d frame", src.Cols(), src.Rows())
	}

	region := src.Region(crop)
	defer region.Close()

	gocv.Resize(region, &w.scratch, out, 0, 0, gocv.InterpolationLinear)
	w.win.IMShow(w.scratch)
	return nil
}

// Quit pumps the window event loop and reports a quit key press
func (w *Window) Quit() bool {
	if w.quit {
		return true
	}
	switch w.win.WaitKey(1) & 0xFF {
	case 'q', 'Q', keyEsc:
		w.quit = true
	}
	return w.quit
}

func (w *Window) Close() error {
	w.scratch.Close()
	return w.win.Close()
}

// toMat uses the camera Mat directly and converts any other image
func toMat(frame image.Image) (gocv.Mat, bool, error) {
	if mf, ok := frame.(*capture.MatFrame); ok {
		return mf.Mat, false, nil
	}
	m, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return gocv.Mat{}, false, fmt.Errorf("window: convert frame: %w", err)
	}
	return m, true, nil
}
