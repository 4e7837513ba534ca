package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/ivlev/multicam/internal/config"
	"github.com/ivlev/multicam/internal/director"
	"github.com/ivlev/multicam/internal/renderer"
	"github.com/ivlev/multicam/internal/source"
	"github.com/ivlev/multicam/internal/system"
	"github.com/ivlev/multicam/internal/viewport"
)

// Project runs the acquire, decide, evolve, render loop over a set of
// opened sources. Everything happens on the calling goroutine.
type Project struct {
	Config     *config.Config
	Sources    []source.Source
	Presenter  renderer.Presenter
	Quitters   []renderer.Quitter
	Director   *director.Director
	Controller *viewport.Controller
	Recorder   *director.Recorder
	Usage      *system.UsageMonitor

	// Out receives the startup banner and the final report
	Out io.Writer

	// Pace is the minimum tick duration; zero lets the sources set the rate
	Pace time.Duration
	Now  func() time.Time

	state      viewport.State
	stats      Stats
	lastReport time.Time
}

// NewProject wires a Director and Controller configured from cfg
func NewProject(cfg *config.Config, sources []source.Source, p renderer.Presenter, rng *rand.Rand) (*Project, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	weights, err := cfg.BehaviorWeights()
	if err != nil {
		return nil, err
	}

	sizes := make([]image.Point, len(sources))
	for i, src := range sources {
		sizes[i] = src.Size()
	}

	d := director.NewDirector(sizes, rng)
	d.Weights = weights
	d.MinZoom, d.MaxZoom = cfg.MinZoom, cfg.MaxZoom
	d.MinPanSpeed, d.MaxPanSpeed = cfg.MinPanSpeed, cfg.MaxPanSpeed
	d.MinZoomSpeed, d.MaxZoomSpeed = cfg.MinZoomSpeed, cfg.MaxZoomSpeed
	d.IntervalMin, d.IntervalMax = cfg.IntervalMin, cfg.IntervalMax

	project := &Project{
		Config:     cfg,
		Sources:    sources,
		Presenter:  p,
		Director:   d,
		Controller: viewport.NewController(cfg.MinZoom, cfg.MaxZoom),
		Out:        os.Stdout,
		Now:        time.Now,
	}
	d.OnSwitch = project.onSwitch
	return project, nil
}

// Start resets the state and counters; Run calls it when needed
func (p *Project) Start() {
	now := p.Now()
	p.state = p.Director.NewState(now)
	p.stats = Stats{Started: now}
	p.lastReport = now
	if p.Recorder == nil && p.Config.TracePath != "" {
		names := make([]string, len(p.Sources))
		for i, src := range p.Sources {
			names[i] = src.Name()
		}
		p.Recorder = director.NewRecorder(now, names)
	}
	fmt.Fprintln(p.Out, "--- [PROJECT: MULTICAM DIRECTOR] ---")
	fmt.Fprintf(p.Out, "[*] Cameras: %d | Output: %dx%d\n", len(p.Sources), p.Config.OutputWidth, p.Config.OutputHeight)
	fmt.Fprintf(p.Out, "[*] Start: %s on %s\n", p.state, p.Sources[p.state.Camera].Name())
	fmt.Fprintln(p.Out, "-------------------------------------")
}

// State returns a copy of the current viewport
func (p *Project) State() viewport.State {
	return p.state
}

// Stats returns a copy of the counters
func (p *Project) Stats() Stats {
	return p.stats
}

// Tick runs one iteration. It reports false when the frame could not be
// read; the state is then left exactly as it was.
func (p *Project) Tick() bool {
	p.stats.Ticks++

	src := p.Sources[p.state.Camera]
	frame, err := src.Read()
	if err != nil {
		p.stats.Skipped++
		log.Printf("[!] Error reading from %s: %v", src.Name(), err)
		return false
	}

	switched := p.Director.Decide(p.Now(), &p.state)

	bounds := frame.Bounds()
	rect := p.Controller.Step(&p.state, bounds.Size())
	if switched && p.Recorder != nil {
		p.Recorder.Crop(rect)
	}
	if p.Config.Verbose {
		log.Printf("[*] %s crop %v", p.state.Behavior, rect)
	}

	crop := rect.Image().Add(bounds.Min)
	if err := p.Presenter.Present(frame, crop, p.Config.OutputSize()); err != nil {
		p.stats.PresentErrors++
		log.Printf("[!] Present: %v", err)
	}
	p.stats.Rendered++
	return true
}

// Run ticks until ctx is cancelled or a quitter fires. Both are checked
// once per tick, after the tick completes.
func (p *Project) Run(ctx context.Context) error {
	p.Start()

	for {
		started := p.Now()
		p.Tick()

		if p.quitRequested() {
			log.Println("[*] Quit requested")
			return nil
		}
		p.maybeReport()

		if err := p.wait(ctx, started); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (p *Project) wait(ctx context.Context, started time.Time) error {
	rest := p.Pace - p.Now().Sub(started)
	if rest <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(rest)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Project) quitRequested() bool {
	for _, q := range p.Quitters {
		if q.Quit() {
			return true
		}
	}
	return false
}

func (p *Project) onSwitch(now time.Time, st viewport.State) {
	p.stats.Switches++
	log.Printf("[*] Switch: %s on %s for %.1fs", st, p.Sources[st.Camera].Name(), st.NextSwitch.Seconds())
	if p.Recorder != nil {
		p.Recorder.Record(now, st)
	}
}

func (p *Project) maybeReport() {
	if p.Config.StatsInterval <= 0 {
		return
	}
	now := p.Now()
	if now.Sub(p.lastReport) < p.Config.StatsInterval {
		return
	}
	p.lastReport = now
	log.Printf("[*] %s", p.report(now))
}

func (p *Project) report(now time.Time) string {
	line := p.stats.Report(now)
	if p.Usage != nil {
		if u, err := p.Usage.Sample(); err == nil {
			line += " | " + u.String()
		}
	}
	return line
}

// Close prints the final report, saves the trace and releases every
// source and the presenter.
func (p *Project) Close() error {
	var errs []error

	fmt.Fprintf(p.Out, "--- [PERFORMANCE REPORT] ---\n%s\n-----------------------------\n", p.report(p.Now()))

	if p.Recorder != nil && p.Config.TracePath != "" {
		if err := p.Recorder.Save(p.Config.TracePath); err != nil {
			errs = append(errs, fmt.Errorf("save trace: %w", err))
		} else {
			log.Printf("[+] Trace saved: %s", p.Config.TracePath)
		}
	}

	closeAll(p.Sources)
	if c, ok := p.Presenter.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
