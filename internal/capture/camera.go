package capture

import (
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"

	"github.com/ivlev/multicam/internal/source"
)

// Settings are the capture hints sent to every device
type Settings struct {
	Width  int
	Height int
	FPS    int
}

// Opener opens local video devices by index through OpenCV
type Opener struct {
	Settings Settings
}

func NewOpener(s Settings) *Opener {
	return &Opener{Settings: s}
}

func (o *Opener) Open(index int) (source.Source, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("%w: camera %d: %v", source.ErrUnavailable, index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: camera %d did not open", source.ErrUnavailable, index)
	}

	if o.Settings.FPS > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(o.Settings.FPS))
	}
	if o.Settings.Width > 0 && o.Settings.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(o.Settings.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(o.Settings.Height))
	}

	// The device may not honour the requested size
	size := image.Pt(int(vc.Get(gocv.VideoCaptureFrameWidth)), int(vc.Get(gocv.VideoCaptureFrameHeight)))
	if size.X < 1 || size.Y < 1 {
		size = image.Pt(o.Settings.Width, o.Settings.Height)
	}
	log.Printf("[*] Camera %d: %dx%d @ %.0f FPS", index, size.X, size.Y, vc.Get(gocv.VideoCaptureFPS))

	return &Camera{
		index: index,
		vc:    vc,
		mat:   gocv.NewMat(),
		size:  size,
	}, nil
}

// Camera is an opened device. It reads into a single Mat, so the frame
// returned by Read is overwritten by the next Read.
type Camera struct {
	index int
	vc    *gocv.VideoCapture
	mat   gocv.Mat
	size  image.Point
}

func (c *Camera) Name() string {
	return fmt.Sprintf("camera %d", c.index)
}

func (c *Camera) Size() image.Point {
	return c.size
}

func (c *Camera) Read() (image.Image, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, fmt.Errorf("%w: camera %d", source.ErrRead, c.index)
	}
	return &MatFrame{Mat: c.mat}, nil
}

func (c *Camera) Close() error {
	c.mat.Close()
	return c.vc.Close()
}
