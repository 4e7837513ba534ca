package director

import (
	"image"
	"math/rand"
	"time"

	"github.com/ivlev/multicam/internal/viewport"
)

// Director decides when to switch behavior and camera, and samples the
// parameters of the newly chosen behavior. It owns all randomness.
type Director struct {
	Sizes   []image.Point // Resolution of each active camera
	Weights Weights       // Behavior probabilities

	MinZoom      float64 // Initial zoom range
	MaxZoom      float64
	MinPanSpeed  int // Pixels per tick, inclusive range
	MaxPanSpeed  int
	MinZoomSpeed float64 // Zoom change per tick
	MaxZoomSpeed float64
	IntervalMin  time.Duration // Delay between two decisions
	IntervalMax  time.Duration

	// OnSwitch is called after every decision with the updated state
	OnSwitch func(now time.Time, st viewport.State)

	rng *rand.Rand
}

// NewDirector creates a Director with default tuning for cameras of the given sizes
func NewDirector(sizes []image.Point, rng *rand.Rand) *Director {
	return &Director{
		Sizes:        sizes,
		Weights:      DefaultWeights(),
		MinZoom:      0.1,
		MaxZoom:      4.0,
		MinPanSpeed:  2,
		MaxPanSpeed:  8,
		MinZoomSpeed: 0.01,
		MaxZoomSpeed: 0.04,
		IntervalMin:  2 * time.Second,
		IntervalMax:  25 * time.Second,
		rng:          rng,
	}
}

// NewState creates the startup state: random zoom, center and camera,
// holding still until the first decision is due.
func (d *Director) NewState(now time.Time) viewport.State {
	cam := d.pickCamera()
	frame := d.frame(cam)
	return viewport.State{
		Camera:     cam,
		Zoom:       d.uniform(d.MinZoom, d.MaxZoom),
		CenterX:    d.intn(frame.X),
		CenterY:    d.intn(frame.Y),
		Behavior:   viewport.Static,
		ZoomSpeed:  d.uniform(d.MinZoomSpeed, d.MaxZoomSpeed),
		LastSwitch: now,
		NextSwitch: d.interval(),
	}
}

// Decide switches behavior and camera once the current interval has elapsed.
// It reports whether a switch happened; otherwise st is left untouched.
// A new center is drawn over the frame of the newly selected camera.
func (d *Director) Decide(now time.Time, st *viewport.State) bool {
	if now.Sub(st.LastSwitch) <= st.NextSwitch {
		return false
	}

	st.Behavior = d.Weights.Sample(d.rng)
	st.Camera = d.pickCamera()
	st.ZoomSpeed = d.uniform(d.MinZoomSpeed, d.MaxZoomSpeed)

	switch st.Behavior {
	case viewport.ZoomIn, viewport.ZoomOut:
		frame := d.frame(st.Camera)
		st.CenterX = d.intn(frame.X)
		st.CenterY = d.intn(frame.Y)
		st.PanVX, st.PanVY = 0, 0
	case viewport.Pan:
		speed := d.MinPanSpeed
		if d.MaxPanSpeed > d.MinPanSpeed {
			speed += d.rng.Intn(d.MaxPanSpeed - d.MinPanSpeed + 1)
		}
		st.PanVX, st.PanVY = 0, 0
		switch d.rng.Intn(4) {
		case 0: // left
			st.PanVX = -speed
		case 1: // right
			st.PanVX = speed
		case 2: // up
			st.PanVY = -speed
		default: // down
			st.PanVY = speed
		}
	default:
		st.PanVX, st.PanVY = 0, 0
	}

	st.LastSwitch = now
	st.NextSwitch = d.interval()

	if d.OnSwitch != nil {
		d.OnSwitch(now, *st)
	}
	return true
}

func (d *Director) pickCamera() int {
	return d.intn(len(d.Sizes))
}

func (d *Director) frame(camera int) image.Point {
	if camera < 0 || camera >= len(d.Sizes) {
		return image.Point{}
	}
	return d.Sizes[camera]
}

func (d *Director) intn(n int) int {
	if n <= 1 {
		return 0
	}
	return d.rng.Intn(n)
}

func (d *Director) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + d.rng.Float64()*(hi-lo)
}

func (d *Director) interval() time.Duration {
	lo, hi := float64(d.IntervalMin), float64(d.IntervalMax)
	return time.Duration(d.uniform(lo, hi))
}
