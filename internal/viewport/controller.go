package viewport

import (
	"image"
	"math"
)

// Controller evolves zoom and center for the active behavior and derives
// a crop rectangle that always fits the source frame.
type Controller struct {
	MinZoom float64
	MaxZoom float64
}

// NewController creates a Controller clamping zoom to [minZoom, maxZoom]
func NewController(minZoom, maxZoom float64) *Controller {
	return &Controller{MinZoom: minZoom, MaxZoom: maxZoom}
}

// Step advances the state by one tick and returns the crop region for a frame
// of the given size. It never fails: any out-of-range input is clamped back.
func (c *Controller) Step(st *State, frame image.Point) Rect {
	if frame.X < 1 || frame.Y < 1 {
		return Rect{}
	}

	// 1. Zoom evolution
	switch {
	case st.Behavior == ZoomIn && st.Zoom < c.MaxZoom:
		st.Zoom += st.ZoomSpeed
	case st.Behavior == ZoomOut && st.Zoom > c.MinZoom:
		st.Zoom -= st.ZoomSpeed
	}
	st.Zoom = c.ClampZoom(st.Zoom)

	// 2. Region size
	w, h := c.CropSize(st.Zoom, frame)

	// 3. Center evolution, stalls at the edge
	if st.Behavior == Pan {
		st.CenterX = clampInt(st.CenterX+st.PanVX, w/2, frame.X-w/2)
		st.CenterY = clampInt(st.CenterY+st.PanVY, h/2, frame.Y-h/2)
	}

	// 4. Rectangle. Static and zoom centers come straight from the director
	// and were never clamped above, so this clamp is what keeps them in bounds.
	x := clampInt(st.CenterX-w/2, 0, frame.X-w)
	y := clampInt(st.CenterY-h/2, 0, frame.Y-h)

	return Rect{X: x, Y: y, W: w, H: h}
}

// ClampZoom maps any zoom value, including NaN, into [MinZoom, MaxZoom]
func (c *Controller) ClampZoom(z float64) float64 {
	if math.IsNaN(z) || z < c.MinZoom {
		return c.MinZoom
	}
	if z > c.MaxZoom {
		return c.MaxZoom
	}
	return z
}

// CropSize returns the crop dimensions for a zoom factor. Division truncates
// and the result is kept within [1, frame].
func (c *Controller) CropSize(zoom float64, frame image.Point) (int, int) {
	if zoom <= 0 || math.IsNaN(zoom) {
		return frame.X, frame.Y
	}
	return cropLen(frame.X, zoom), cropLen(frame.Y, zoom)
}

func cropLen(n int, zoom float64) int {
	l := float64(n) / zoom
	if l >= float64(n) {
		return n
	}
	return clampInt(int(l), 1, n)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
