package director

import (
	"image"
	"math/rand"
	"testing"
	"time"

	"github.com/ivlev/multicam/internal/viewport"
)

var frame = image.Pt(1280, 720)

func newTestDirector(cameras int, seed int64) *Director {
	sizes := make([]image.Point, cameras)
	for i := range sizes {
		sizes[i] = frame
	}
	return NewDirector(sizes, rand.New(rand.NewSource(seed)))
}

func TestNewState(t *testing.T) {
	d := newTestDirector(3, 1)
	start := time.Unix(1000, 0)

	for i := 0; i < 1000; i++ {
		st := d.NewState(start)
		if st.Behavior != viewport.Static {
			t.Fatalf("expected static start, got %s", st.Behavior)
		}
		if st.Camera < 0 || st.Camera >= 3 {
			t.Fatalf("camera %d out of range", st.Camera)
		}
		if st.Zoom < d.MinZoom || st.Zoom > d.MaxZoom {
			t.Fatalf("zoom %f out of range", st.Zoom)
		}
		if st.CenterX < 0 || st.CenterX >= frame.X || st.CenterY < 0 || st.CenterY >= frame.Y {
			t.Fatalf("center (%d,%d) outside frame", st.CenterX, st.CenterY)
		}
		if st.NextSwitch < d.IntervalMin || st.NextSwitch > d.IntervalMax {
			t.Fatalf("interval %v out of range", st.NextSwitch)
		}
		if st.PanVX != 0 || st.PanVY != 0 {
			t.Fatalf("static start must not move: %v", st)
		}
	}
}

func TestDecideWaitsForInterval(t *testing.T) {
	d := newTestDirector(3, 2)
	start := time.Unix(1000, 0)
	st := d.NewState(start)
	before := st

	if d.Decide(start.Add(st.NextSwitch), &st) {
		t.Fatal("decision must wait until the interval is strictly exceeded")
	}
	if st != before {
		t.Errorf("state changed without a switch: %v -> %v", before, st)
	}

	now := start.Add(st.NextSwitch + time.Millisecond)
	if !d.Decide(now, &st) {
		t.Fatal("expected a switch once the interval elapsed")
	}
	if !st.LastSwitch.Equal(now) {
		t.Errorf("LastSwitch = %v, want %v", st.LastSwitch, now)
	}
}

func TestDecidePanVelocity(t *testing.T) {
	d := newTestDirector(2, 3)
	d.Weights = Only(viewport.Pan)
	now := time.Unix(1000, 0)
	st := d.NewState(now)

	directions := map[[2]int]int{}
	for i := 0; i < 2000; i++ {
		now = now.Add(d.IntervalMax + time.Second)
		d.Decide(now, &st)

		if st.Behavior != viewport.Pan {
			t.Fatalf("expected pan, got %s", st.Behavior)
		}
		if (st.PanVX == 0) == (st.PanVY == 0) {
			t.Fatalf("exactly one velocity component must be set: (%d,%d)", st.PanVX, st.PanVY)
		}
		speed := abs(st.PanVX + st.PanVY)
		if speed < d.MinPanSpeed || speed > d.MaxPanSpeed {
			t.Fatalf("pan speed %d outside [%d, %d]", speed, d.MinPanSpeed, d.MaxPanSpeed)
		}
		directions[[2]int{sign(st.PanVX), sign(st.PanVY)}]++
	}

	if len(directions) != 4 {
		t.Errorf("expected all four directions, got %v", directions)
	}
}

func TestDecideZoomRecenters(t *testing.T) {
	for _, b := range []viewport.Behavior{viewport.ZoomIn, viewport.ZoomOut, viewport.Static} {
		t.Run(b.String(), func(t *testing.T) {
			d := newTestDirector(4, 4)
			d.Weights = Only(b)
			now := time.Unix(1000, 0)
			st := d.NewState(now)
			st.PanVX, st.PanVY = 7, -7

			now = now.Add(time.Minute)
			d.Decide(now, &st)

			if st.Behavior != b {
				t.Fatalf("expected %s, got %s", b, st.Behavior)
			}
			if st.PanVX != 0 || st.PanVY != 0 {
				t.Errorf("velocity must be zero, got (%d,%d)", st.PanVX, st.PanVY)
			}
			if st.ZoomSpeed < d.MinZoomSpeed || st.ZoomSpeed > d.MaxZoomSpeed {
				t.Errorf("zoom speed %f out of range", st.ZoomSpeed)
			}
			if st.CenterX < 0 || st.CenterX >= frame.X || st.CenterY < 0 || st.CenterY >= frame.Y {
				t.Errorf("center (%d,%d) outside frame", st.CenterX, st.CenterY)
			}
		})
	}
}

func TestDecideCamerasUniform(t *testing.T) {
	d := newTestDirector(3, 5)
	now := time.Unix(1000, 0)
	st := d.NewState(now)

	counts := make([]int, 3)
	repeats := 0
	for i := 0; i < 9000; i++ {
		prev := st.Camera
		now = now.Add(time.Minute)
		d.Decide(now, &st)
		counts[st.Camera]++
		if st.Camera == prev {
			repeats++
		}
	}

	for cam, n := range counts {
		if n < 2700 || n > 3300 {
			t.Errorf("camera %d picked %d times, expected about 3000", cam, n)
		}
	}
	if repeats == 0 {
		t.Error("re-picking the same camera must be possible")
	}
}

func TestDecideWeightedDistribution(t *testing.T) {
	d := newTestDirector(1, 6)
	now := time.Unix(1000, 0)
	st := d.NewState(now)

	const n = 20000
	counts := map[viewport.Behavior]int{}
	for i := 0; i < n; i++ {
		now = now.Add(d.IntervalMax + time.Nanosecond)
		if !d.Decide(now, &st) {
			t.Fatal("expected a switch on every step")
		}
		counts[st.Behavior]++
	}

	chi2 := 0.0
	for _, w := range d.Weights {
		expected := w.P * n
		diff := float64(counts[w.Behavior]) - expected
		chi2 += diff * diff / expected
	}

	// 3 degrees of freedom, p = 0.001
	if chi2 > 16.27 {
		t.Errorf("chi-square %.2f too large, counts %v", chi2, counts)
	}
	t.Logf("counts %v chi2 %.2f", counts, chi2)
}

func TestOnSwitchHook(t *testing.T) {
	d := newTestDirector(2, 7)
	now := time.Unix(1000, 0)
	st := d.NewState(now)

	var calls int
	d.OnSwitch = func(at time.Time, s viewport.State) {
		calls++
		if !at.Equal(s.LastSwitch) {
			t.Errorf("hook time %v differs from LastSwitch %v", at, s.LastSwitch)
		}
	}

	d.Decide(now, &st)
	d.Decide(now.Add(time.Hour), &st)
	if calls != 1 {
		t.Errorf("expected 1 hook call, got %d", calls)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

func TestDecideRecentersOnNewCameraFrame(t *testing.T) {
	small := image.Pt(64, 48)
	d := NewDirector([]image.Point{small, small}, rand.New(rand.NewSource(8)))
	d.Weights = Only(viewport.ZoomIn)
	now := time.Unix(1000, 0)
	st := d.NewState(now)

	for i := 0; i < 500; i++ {
		now = now.Add(time.Minute)
		d.Decide(now, &st)
		if st.CenterX >= small.X || st.CenterY >= small.Y {
			t.Fatalf("center (%d,%d) outside %v", st.CenterX, st.CenterY, small)
		}
	}
}
