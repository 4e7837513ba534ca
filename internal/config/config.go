package config

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/ivlev/multicam/internal/director"
	"github.com/ivlev/multicam/internal/viewport"
)

// Source kinds accepted by Config.Source besides a filesystem path
const (
	SourceCamera  = "camera"
	SourcePattern = "pattern"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Source       string `yaml:"source"`        // camera, pattern, or image dir / PDF path
	Cameras      int    `yaml:"cameras"`       // Camera indices probed at startup
	CameraFPS    int    `yaml:"camera_fps"`    // FPS hint sent to the capture device
	CameraWidth  int    `yaml:"camera_width"`  // Requested capture size
	CameraHeight int    `yaml:"camera_height"`
	OutputWidth  int    `yaml:"output_width"`
	OutputHeight int    `yaml:"output_height"`

	MinZoom      float64       `yaml:"min_zoom"`
	MaxZoom      float64       `yaml:"max_zoom"`
	MinPanSpeed  int           `yaml:"min_pan_speed"`
	MaxPanSpeed  int           `yaml:"max_pan_speed"`
	MinZoomSpeed float64       `yaml:"min_zoom_speed"`
	MaxZoomSpeed float64       `yaml:"max_zoom_speed"`
	IntervalMin  time.Duration `yaml:"interval_min"`
	IntervalMax  time.Duration `yaml:"interval_max"`

	Weights map[string]float64 `yaml:"weights"` // Behavior name -> probability
	Seed    int64              `yaml:"seed"`    // 0 = seeded from the clock

	Headless      bool          `yaml:"headless"`
	WindowName    string        `yaml:"window_name"`
	SnapshotDir   string        `yaml:"snapshot_dir"`
	SnapshotEvery int           `yaml:"snapshot_every"` // Ticks between two snapshots
	RecordPath    string        `yaml:"record_path"`
	VideoEncoder  string        `yaml:"video_encoder"`
	Quality       int           `yaml:"quality"`
	TracePath     string        `yaml:"trace_path"`
	StatsInterval time.Duration `yaml:"stats_interval"`
	Verbose       bool          `yaml:"verbose"`
}

// Default returns the tuning the installation shipped with
func Default() *Config {
	return &Config{
		Source:       SourceCamera,
		Cameras:      3,
		CameraFPS:    24,
		CameraWidth:  1280,
		CameraHeight: 720,
		OutputWidth:  1080,
		OutputHeight: 720,

		MinZoom:      0.1,
		MaxZoom:      4.0,
		MinPanSpeed:  2,
		MaxPanSpeed:  8,
		MinZoomSpeed: 0.01,
		MaxZoomSpeed: 0.04,
		IntervalMin:  2 * time.Second,
		IntervalMax:  25 * time.Second,

		Weights: map[string]float64{
			"static":   0.1,
			"zoom_in":  0.3,
			"zoom_out": 0.2,
			"pan":      0.4,
		},

		WindowName:    "Webcam",
		SnapshotEvery: 24,
		StatsInterval: 30 * time.Second,
	}
}

// OutputSize is the size every presented frame is scaled to
func (c *Config) OutputSize() image.Point {
	return image.Pt(c.OutputWidth, c.OutputHeight)
}

// BehaviorWeights converts the weight map to a table in behavior order
func (c *Config) BehaviorWeights() (director.Weights, error) {
	byBehavior := map[viewport.Behavior]float64{}
	for name, p := range c.Weights {
		b, err := viewport.ParseBehavior(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		byBehavior[b] += p
	}

	var w director.Weights
	for _, b := range viewport.Behaviors {
		if p, ok := byBehavior[b]; ok {
			w = append(w, director.Weight{Behavior: b, P: p})
		}
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return w, nil
}

// Validate reports the first tunable that cannot drive the viewport
func (c *Config) Validate() error {
	switch {
	case c.Source == "":
		return fmt.Errorf("%w: empty source", ErrInvalid)
	case c.Cameras < 1:
		return fmt.Errorf("%w: cameras must be at least 1, got %d", ErrInvalid, c.Cameras)
	case c.CameraWidth < 1 || c.CameraHeight < 1:
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalid, c.CameraWidth, c.CameraHeight)
	case c.OutputWidth < 1 || c.OutputHeight < 1:
		return fmt.Errorf("%w: output size %dx%d", ErrInvalid, c.OutputWidth, c.OutputHeight)
	case c.CameraFPS < 0:
		return fmt.Errorf("%w: negative camera fps %d", ErrInvalid, c.CameraFPS)
	case !(c.MinZoom > 0) || math.IsInf(c.MaxZoom, 0) || c.MinZoom > c.MaxZoom:
		return fmt.Errorf("%w: zoom range [%v, %v]", ErrInvalid, c.MinZoom, c.MaxZoom)
	case c.MinPanSpeed < 0 || c.MinPanSpeed > c.MaxPanSpeed:
		return fmt.Errorf("%w: pan speed range [%d, %d]", ErrInvalid, c.MinPanSpeed, c.MaxPanSpeed)
	case c.MinZoomSpeed < 0 || c.MinZoomSpeed > c.MaxZoomSpeed:
		return fmt.Errorf("%w: zoom speed range [%v, %v]", ErrInvalid, c.MinZoomSpeed, c.MaxZoomSpeed)
	case c.IntervalMin < 0 || c.IntervalMin > c.IntervalMax:
		return fmt.Errorf("%w: interval range [%v, %v]", ErrInvalid, c.IntervalMin, c.IntervalMax)
	case c.SnapshotDir != "" && c.SnapshotEvery < 1:
		return fmt.Errorf("%w: snapshot_every must be at least 1", ErrInvalid)
	case c.StatsInterval < 0:
		return fmt.Errorf("%w: negative stats interval", ErrInvalid)
	}

	_, err := c.BehaviorWeights()
	return err
}
