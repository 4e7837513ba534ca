package renderer

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/ivlev/multicam/internal/system"
)

// subImager is implemented by frames that can hand out a cheap view of a
// region, such as *image.RGBA or an OpenCV backed frame.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Scaler crops and resizes frames in pure Go into pooled RGBA buffers
type Scaler struct {
	Interpolator draw.Interpolator
	pool         *system.ImagePool
}

func NewScaler() *Scaler {
	return &Scaler{
		Interpolator: draw.ApproxBiLinear,
		pool:         system.NewImagePool(),
	}
}

// Scale returns crop of frame resized to out. Call Release when done with it.
func (s *Scaler) Scale(frame image.Image, crop image.Rectangle, out image.Point) *image.RGBA {
	dst := s.pool.Get(image.Rect(0, 0, out.X, out.Y))

	src, sr := frame, crop.Intersect(frame.Bounds())
	if sub, ok := frame.(subImager); ok && !sr.Empty() {
		src = sub.SubImage(sr)
		sr = src.Bounds()
	}
	if sr.Empty() {
		sr = frame.Bounds()
	}

	s.Interpolator.Scale(dst, dst.Bounds(), src, sr, draw.Src, nil)
	return dst
}

// Release returns a scaled frame to the pool
func (s *Scaler) Release(img *image.RGBA) {
	s.pool.Put(img)
}
