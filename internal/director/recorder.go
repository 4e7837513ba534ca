package director

import (
	"time"

	"github.com/ivlev/multicam/internal/viewport"
)

const traceVersion = "1.0"

// Recorder collects a Keyframe for every switch. Its Record method fits
// Director.OnSwitch.
type Recorder struct {
	start time.Time
	trace Trace
}

// NewRecorder starts a trace at start for the named sources
func NewRecorder(start time.Time, sources []string) *Recorder {
	return &Recorder{
		start: start,
		trace: Trace{
			Version: traceVersion,
			Started: start.Format(time.RFC3339),
			Sources: append([]string(nil), sources...),
		},
	}
}

// Record appends the state taken right after a switch
func (r *Recorder) Record(now time.Time, st viewport.State) {
	r.trace.Keyframes = append(r.trace.Keyframes, Keyframe{
		Time:      now.Sub(r.start).Seconds(),
		Camera:    st.Camera,
		Focus:     st.Behavior.String(),
		Zoom:      st.Zoom,
		ZoomSpeed: st.ZoomSpeed,
		Center:    Point{st.CenterX, st.CenterY},
		Velocity:  Point{st.PanVX, st.PanVY},
		Hold:      st.NextSwitch.Seconds(),
	})
}

// Crop fills in the rectangle of the latest keyframe. Only the first crop
// after a switch is kept.
func (r *Recorder) Crop(rect viewport.Rect) {
	n := len(r.trace.Keyframes)
	if n == 0 || r.trace.Keyframes[n-1].Rect != (viewport.Rect{}) {
		return
	}
	r.trace.Keyframes[n-1].Rect = rect
}

// Trace returns the keyframes recorded so far
func (r *Recorder) Trace() *Trace {
	t := r.trace
	t.Keyframes = append([]Keyframe(nil), r.trace.Keyframes...)
	return &t
}

// Save writes the trace to path
func (r *Recorder) Save(path string) error {
	return WriteTrace(r.Trace(), path)
}
