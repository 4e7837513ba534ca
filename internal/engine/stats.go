package engine

import (
	"fmt"
	"time"
)

// Stats counts what happened since the loop started
type Stats struct {
	Started       time.Time
	Ticks         int // Loop iterations, including skipped ones
	Rendered      int // Frames handed to the presenter
	Skipped       int // Ticks lost to read failures
	Switches      int // Director decisions
	PresentErrors int
}

// Report formats the counters the way the performance report prints them
func (s Stats) Report(now time.Time) string {
	elapsed := now.Sub(s.Started)
	fps := 0.0
	if elapsed > 0 {
		fps = float64(s.Rendered) / elapsed.Seconds()
	}
	return fmt.Sprintf("uptime %s | ticks %d | rendered %d (%.1f FPS) | skipped %d | switches %d | present errors %d",
		elapsed.Round(time.Second), s.Ticks, s.Rendered, fps, s.Skipped, s.Switches, s.PresentErrors)
}
