package viewport

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// Behavior governs how zoom and center evolve between two switch decisions
type Behavior int

const (
	Static Behavior = iota
	ZoomIn
	ZoomOut
	Pan
)

// Behaviors lists every behavior in declaration order
var Behaviors = []Behavior{Static, ZoomIn, ZoomOut, Pan}

func (b Behavior) String() string {
	switch b {
	case Static:
		return "static"
	case ZoomIn:
		return "zoom_in"
	case ZoomOut:
		return "zoom_out"
	case Pan:
		return "pan"
	default:
		return "unknown"
	}
}

// ParseBehavior accepts the names produced by String
func ParseBehavior(name string) (Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "static":
		return Static, nil
	case "zoom_in", "zoomin", "zoom-in":
		return ZoomIn, nil
	case "zoom_out", "zoomout", "zoom-out":
		return ZoomOut, nil
	case "pan":
		return Pan, nil
	default:
		return Static, fmt.Errorf("unknown behavior: %q", name)
	}
}

// State is the viewport being animated over the selected camera.
// It is owned by the tick loop and mutated only by Director and Controller.
type State struct {
	Camera   int
	Zoom     float64 // 1.0 = native resolution, >1 magnified
	CenterX  int     // Crop center in source pixels
	CenterY  int
	Behavior Behavior

	PanVX int // Pixels per tick, nonzero only while panning
	PanVY int

	ZoomSpeed  float64       // Zoom change per tick
	LastSwitch time.Time     // When the last decision was taken
	NextSwitch time.Duration // Delay until the next decision is due
}

func (s State) String() string {
	return fmt.Sprintf("cam=%d %s zoom=%.3f center=(%d,%d) v=(%d,%d)",
		s.Camera, s.Behavior, s.Zoom, s.CenterX, s.CenterY, s.PanVX, s.PanVY)
}

// Rect is a crop region inside a source frame
type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Image converts the region to an image.Rectangle
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Within reports whether the region lies fully inside a frame of the given size
func (r Rect) Within(frame image.Point) bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 1 && r.H >= 1 &&
		r.X+r.W <= frame.X && r.Y+r.H <= frame.Y
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}
