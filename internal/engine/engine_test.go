package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivlev/multicam/internal/config"
	"github.com/ivlev/multicam/internal/director"
	"github.com/ivlev/multicam/internal/source"
)

type fakeSource struct {
	name   string
	frame  *image.RGBA
	reads  int
	failOn map[int]bool
	closed bool
}

func newFakeSource(name string, bounds image.Rectangle) *fakeSource {
	return &fakeSource{name: name, frame: image.NewRGBA(bounds), failOn: map[int]bool{}}
}

func (s *fakeSource) Name() string      { return s.name }
func (s *fakeSource) Size() image.Point { return s.frame.Bounds().Size() }
func (s *fakeSource) Close() error      { s.closed = true; return nil }

func (s *fakeSource) Read() (image.Image, error) {
	s.reads++
	if s.failOn[s.reads] {
		return nil, source.ErrRead
	}
	return s.frame, nil
}

type presented struct {
	bounds image.Rectangle
	crop   image.Rectangle
	out    image.Point
}

type fakePresenter struct {
	calls  []presented
	closed bool
}

func (p *fakePresenter) Present(frame image.Image, crop image.Rectangle, out image.Point) error {
	p.calls = append(p.calls, presented{frame.Bounds(), crop, out})
	return nil
}

func (p *fakePresenter) Close() error {
	p.closed = true
	return nil
}

type quitAfter struct {
	n, calls int
}

func (q *quitAfter) Quit() bool {
	q.calls++
	return q.calls >= q.n
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestProject(t *testing.T, cfg *config.Config, sources ...source.Source) (*Project, *fakePresenter, *testClock) {
	t.Helper()
	p := &fakePresenter{}
	project, err := NewProject(cfg, sources, p, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	clock := &testClock{now: time.Unix(1700000000, 0)}
	project.Now = clock.Now
	return project, p, clock
}

func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.StatsInterval = 0
	return cfg
}

func TestTickSkipsFailedRead(t *testing.T) {
	src := newFakeSource("cam0", image.Rect(0, 0, 1280, 720))
	src.failOn[5] = true

	project, p, clock := newTestProject(t, quietConfig(), src)
	project.Start()

	for i := 1; i <= 10; i++ {
		before := project.State()
		ok := project.Tick()
		if i == 5 {
			if ok {
				t.Fatalf("tick 5 should fail")
			}
			if project.State() != before {
				t.Errorf("state changed on failed tick: %v -> %v", before, project.State())
			}
		} else if !ok {
			t.Fatalf("tick %d failed", i)
		}
		clock.now = clock.now.Add(40 * time.Millisecond)
	}

	if len(p.calls) != 9 {
		t.Errorf("expected 9 presented frames, got %d", len(p.calls))
	}
	stats := project.Stats()
	if stats.Ticks != 10 || stats.Skipped != 1 || stats.Rendered != 9 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTickCropsStayInsideFrame(t *testing.T) {
	sources := []source.Source{
		newFakeSource("cam0", image.Rect(0, 0, 1280, 720)),
		newFakeSource("cam1", image.Rect(100, 50, 740, 530)),
		newFakeSource("cam2", image.Rect(0, 0, 321, 241)),
	}
	cfg := quietConfig()
	cfg.TracePath = filepath.Join(t.TempDir(), "trace.yaml")

	project, p, clock := newTestProject(t, cfg, sources...)
	project.Start()

	for i := 0; i < 2000; i++ {
		project.Tick()
		clock.now = clock.now.Add(250 * time.Millisecond)
	}

	out := image.Pt(cfg.OutputWidth, cfg.OutputHeight)
	for i, c := range p.calls {
		if c.crop.Empty() || !c.crop.In(c.bounds) {
			t.Fatalf("call %d: crop %v outside frame %v", i, c.crop, c.bounds)
		}
		if c.out != out {
			t.Fatalf("call %d: output %v, want %v", i, c.out, out)
		}
	}

	switches := project.Stats().Switches
	if switches == 0 {
		t.Fatal("expected at least one switch in 500 seconds")
	}

	if err := project.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, src := range sources {
		if !src.(*fakeSource).closed {
			t.Errorf("%s not closed", src.Name())
		}
	}
	if !p.closed {
		t.Error("presenter not closed")
	}

	trace, err := director.ReadTrace(cfg.TracePath)
	if err != nil {
		t.Fatalf("ReadTrace: %v", err)
	}
	if len(trace.Keyframes) != switches {
		t.Errorf("expected %d keyframes, got %d", switches, len(trace.Keyframes))
	}
	for i, kf := range trace.Keyframes {
		if kf.Rect.W < 1 || kf.Rect.H < 1 {
			t.Errorf("keyframe %d has no crop: %+v", i, kf)
		}
	}
	if len(trace.Sources) != 3 || trace.Sources[1] != "cam1" {
		t.Errorf("unexpected trace sources: %v", trace.Sources)
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	src := newFakeSource("cam0", image.Rect(0, 0, 640, 480))
	project, p, _ := newTestProject(t, quietConfig(), src)
	project.Quitters = append(project.Quitters, &quitAfter{n: 3})

	if err := project.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := project.Stats().Ticks; got != 3 {
		t.Errorf("expected 3 ticks, got %d", got)
	}
	if len(p.calls) != 3 {
		t.Errorf("expected 3 presented frames, got %d", len(p.calls))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	src := newFakeSource("cam0", image.Rect(0, 0, 640, 480))
	project, _, _ := newTestProject(t, quietConfig(), src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := project.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := project.Stats().Ticks; got != 1 {
		t.Errorf("expected the in-flight tick to finish and stop, got %d ticks", got)
	}
}

func TestNewProjectRejectsBadWeights(t *testing.T) {
	cfg := quietConfig()
	cfg.Weights = map[string]float64{"pan": 0.5, "static": 0.2}

	src := newFakeSource("cam0", image.Rect(0, 0, 640, 480))
	_, err := NewProject(cfg, []source.Source{src}, &fakePresenter{}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	if _, err := NewProject(quietConfig(), nil, &fakePresenter{}, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoSources) {
		t.Errorf("expected ErrNoSources, got %v", err)
	}
}

func TestOpenSourcesExcludesFailures(t *testing.T) {
	opener := source.OpenerFunc(func(index int) (source.Source, error) {
		if index == 1 || index == 3 {
			return nil, fmt.Errorf("camera %d: %w", index, source.ErrUnavailable)
		}
		return newFakeSource(fmt.Sprintf("cam%d", index), image.Rect(0, 0, 64, 48)), nil
	})

	sources, err := OpenSources(context.Background(), opener, 5, 2)
	if err != nil {
		t.Fatalf("OpenSources: %v", err)
	}

	var names []string
	for _, src := range sources {
		names = append(names, src.Name())
	}
	if fmt.Sprint(names) != "[cam0 cam2 cam4]" {
		t.Errorf("unexpected sources: %v", names)
	}
}

func TestOpenSourcesNoneAvailable(t *testing.T) {
	opener := source.OpenerFunc(func(index int) (source.Source, error) {
		return nil, source.ErrUnavailable
	})

	if _, err := OpenSources(context.Background(), opener, 3, 3); !errors.Is(err, ErrNoSources) {
		t.Errorf("expected ErrNoSources, got %v", err)
	}
}

func TestStatsReport(t *testing.T) {
	start := time.Unix(0, 0)
	s := Stats{Started: start, Ticks: 30, Rendered: 20, Skipped: 10, Switches: 2}
	got := s.Report(start.Add(10 * time.Second))
	want := "uptime 10s | ticks 30 | rendered 20 (2.0 FPS) | skipped 10 | switches 2 | present errors 0"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
