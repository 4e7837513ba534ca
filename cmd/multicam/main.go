package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ivlev/multicam/internal/capture"
	"github.com/ivlev/multicam/internal/config"
	"github.com/ivlev/multicam/internal/director"
	"github.com/ivlev/multicam/internal/display"
	"github.com/ivlev/multicam/internal/engine"
	"github.com/ivlev/multicam/internal/renderer"
	"github.com/ivlev/multicam/internal/source"
	"github.com/ivlev/multicam/internal/system"
)

func main() {
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "YAML file with tunables (flags override it)")
	sourcePtr := flag.String("source", "", "camera, pattern, or a folder of images / PDF")
	camerasPtr := flag.Int("cameras", 0, "Camera indices to probe")
	widthPtr := flag.Int("width", 0, "Capture width")
	heightPtr := flag.Int("height", 0, "Capture height")
	fpsPtr := flag.Int("fps", 0, "Capture FPS, also the tick rate for still and pattern sources")
	outWidthPtr := flag.Int("out-width", 0, "Output width")
	outHeightPtr := flag.Int("out-height", 0, "Output height")
	seedPtr := flag.Int64("seed", 0, "Random seed (0 - from the clock)")
	headlessPtr := flag.Bool("headless", false, "No window; quit with q in the terminal")
	snapshotsPtr := flag.String("snapshots", "", "Folder for PNG snapshots of the output")
	snapshotEveryPtr := flag.Int("snapshot-every", 0, "Ticks between two snapshots")
	recordPtr := flag.String("record", "", "Record the output to an H.264 file")
	qualityPtr := flag.Int("quality", 0, "Recording quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	tracePtr := flag.String("trace", "", "Write every switch decision to this YAML file")
	traceDirPtr := flag.String("trace-dir", "", "Write the trace to a timestamped file in this folder")
	lastTracePtr := flag.Bool("last-trace", false, "Print the newest trace in -trace-dir and exit")
	statsPtr := flag.Duration("stats", 0, "Interval between performance reports")
	dpiPtr := flag.Int("dpi", 150, "DPI for PDF pages")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Cameras opened in parallel")
	verbosePtr := flag.Bool("verbose", false, "Log the viewport every tick")

	flag.Parse()

	if *lastTracePtr {
		printLatestTrace(*traceDirPtr)
		return
	}

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["source"] {
		cfg.Source = *sourcePtr
	}
	if set["cameras"] {
		cfg.Cameras = *camerasPtr
	}
	if set["width"] {
		cfg.CameraWidth = *widthPtr
	}
	if set["height"] {
		cfg.CameraHeight = *heightPtr
	}
	if set["fps"] {
		cfg.CameraFPS = *fpsPtr
	}
	if set["out-width"] {
		cfg.OutputWidth = *outWidthPtr
	}
	if set["out-height"] {
		cfg.OutputHeight = *outHeightPtr
	}
	if set["seed"] {
		cfg.Seed = *seedPtr
	}
	if set["headless"] {
		cfg.Headless = *headlessPtr
	}
	if set["snapshots"] {
		cfg.SnapshotDir = *snapshotsPtr
	}
	if set["snapshot-every"] {
		cfg.SnapshotEvery = *snapshotEveryPtr
	}
	if set["record"] {
		cfg.RecordPath = *recordPtr
	}
	if set["quality"] {
		cfg.Quality = *qualityPtr
	}
	if set["trace"] {
		cfg.TracePath = *tracePtr
	}
	if cfg.TracePath == "" && *traceDirPtr != "" {
		cfg.TracePath = director.GenerateTracePath(*traceDirPtr)
	}
	if set["stats"] {
		cfg.StatsInterval = *statsPtr
	}
	if set["verbose"] {
		cfg.Verbose = *verbosePtr
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	fmt.Printf("[*] Seed: %d\n", seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opener, count, pace, cleanup := openerFor(cfg, *dpiPtr)
	defer cleanup()

	sources, err := engine.OpenSources(ctx, opener, count, *workersPtr)
	if err != nil {
		if errors.Is(err, engine.ErrNoSources) {
			log.Fatalf("[-] Error: %v. Check that the cameras are connected", err)
		}
		log.Fatalf("[-] Error opening cameras: %v", err)
	}

	presenters, quitters := buildPresenters(ctx, cfg)

	project, err := engine.NewProject(cfg, sources, presenters, rng)
	if err != nil {
		log.Fatalf("[-] Project error: %v", err)
	}
	project.Pace = pace
	project.Quitters = quitters
	for _, q := range quitters {
		if w, ok := q.(*system.KeyWatcher); ok {
			project.Out = w.Writer(os.Stdout)
		}
	}

	if monitor, err := system.NewUsageMonitor(); err == nil {
		project.Usage = monitor
	} else {
		log.Printf("[!] Resource monitor unavailable: %v", err)
	}

	runErr := project.Run(ctx)
	if err := project.Close(); err != nil {
		log.Printf("[!] Shutdown: %v", err)
	}
	for _, q := range quitters {
		if w, ok := q.(*system.KeyWatcher); ok {
			w.Close()
		}
	}
	if runErr != nil {
		log.Fatalf("[-] Project error: %v", runErr)
	}

	if cfg.RecordPath != "" {
		fmt.Printf("[+++] Done! Recording: %s\n", cfg.RecordPath)
	}
}

// openerFor picks the source kind. Still and pattern sources return frames
// immediately, so the loop is paced at the configured FPS for them.
func openerFor(cfg *config.Config, dpi int) (source.Opener, int, time.Duration, func()) {
	tick := time.Second / time.Duration(max(cfg.CameraFPS, 1))

	switch cfg.Source {
	case config.SourceCamera:
		opener := capture.NewOpener(capture.Settings{
			Width:  cfg.CameraWidth,
			Height: cfg.CameraHeight,
			FPS:    cfg.CameraFPS,
		})
		return opener, cfg.Cameras, 0, func() {}
	case config.SourcePattern:
		return source.NewPatternOpener(cfg.CameraWidth, cfg.CameraHeight), cfg.Cameras, tick, func() {}
	default:
		opener, err := source.NewStillOpener(cfg.Source, dpi)
		if err != nil {
			log.Fatalf("[-] Source error: %v", err)
		}
		fmt.Printf("[*] Source: %s | Cameras: %d\n", cfg.Source, opener.Count())
		return opener, opener.Count(), tick, func() { opener.Close() }
	}
}

func buildPresenters(ctx context.Context, cfg *config.Config) (renderer.Multi, []renderer.Quitter) {
	var presenters renderer.Multi
	var quitters []renderer.Quitter

	if !cfg.Headless {
		presenters = append(presenters, display.NewWindow(cfg.WindowName, cfg.OutputSize()))
	} else {
		keys, err := system.WatchTerminal()
		if err != nil {
			log.Printf("[!] Keyboard unavailable, stop with Ctrl-C: %v", err)
		} else {
			quitters = append(quitters, keys)
		}
	}

	if cfg.SnapshotDir != "" {
		snapshots, err := renderer.NewSnapshotWriter(cfg.SnapshotDir, cfg.SnapshotEvery)
		if err != nil {
			log.Fatalf("[-] Snapshot folder error: %v", err)
		}
		presenters = append(presenters, snapshots)
	}

	if cfg.RecordPath != "" {
		encoder := cfg.VideoEncoder
		if encoder == "" {
			encoder = system.GetBestH264Encoder()
			if encoder != "libx264" {
				fmt.Printf("[*] Hardware acceleration detected: %s\n", encoder)
			}
		}
		// ffmpeg must outlive Ctrl-C long enough to finish the file on Close
		presenters = append(presenters, renderer.NewFFmpegRecorder(context.WithoutCancel(ctx), cfg.RecordPath, max(cfg.CameraFPS, 1), encoder, cfg.Quality))
	}

	quitters = append(quitters, presenters)
	return presenters, quitters
}

func printLatestTrace(dir string) {
	if dir == "" {
		dir = "."
	}
	path, err := director.FindLatestTrace(dir)
	if err != nil {
		log.Fatalf("[-] Error: %v", err)
	}
	trace, err := director.ReadTrace(path)
	if err != nil {
		log.Fatalf("[-] Error reading %s: %v", path, err)
	}

	fmt.Printf("[*] Trace: %s (started %s, %d switches)\n", path, trace.Started, len(trace.Keyframes))
	for _, kf := range trace.Keyframes {
		name := fmt.Sprint(kf.Camera)
		if kf.Camera >= 0 && kf.Camera < len(trace.Sources) {
			name = trace.Sources[kf.Camera]
		}
		fmt.Printf("  %8.2fs  %-10s %-8s zoom=%.2f center=(%d,%d) hold=%.1fs\n",
			kf.Time, name, kf.Focus, kf.Zoom, kf.Center.X, kf.Center.Y, kf.Hold)
	}
}
