package director

import "github.com/ivlev/multicam/internal/viewport"

// Trace is the record of every switch decision taken during one run
type Trace struct {
	Version   string     `yaml:"version"`
	Started   string     `yaml:"started"`
	Sources   []string   `yaml:"sources"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// Keyframe captures the viewport right after a switch
type Keyframe struct {
	Time      float64 `yaml:"time"`  // Offset from start in seconds
	Camera    int     `yaml:"camera"`
	Focus     string  `yaml:"focus"` // Behavior name
	Zoom      float64 `yaml:"zoom"`
	ZoomSpeed float64 `yaml:"zoom_speed"`
	Center    Point   `yaml:"center"`
	Velocity  Point   `yaml:"velocity"`
	Hold      float64 `yaml:"hold"` // Seconds until the next decision

	// Rect is the first crop rendered after the switch
	Rect viewport.Rect `yaml:"rect"`
}

// Point is an integer pixel pair
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}
