package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// SnapshotWriter saves every Every-th presented frame as a PNG in Dir
type SnapshotWriter struct {
	Dir    string
	Every  int
	scaler *Scaler
	count  int
	saved  int
}

func NewSnapshotWriter(dir string, every int) (*SnapshotWriter, error) {
	if every < 1 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &SnapshotWriter{Dir: dir, Every: every, scaler: NewScaler()}, nil
}

func (w *SnapshotWriter) Present(frame image.Image, crop image.Rectangle, out image.Point) error {
	w.count++
	if (w.count-1)%w.Every != 0 {
		return nil
	}

	img := w.scaler.Scale(frame, crop, out)
	defer w.scaler.Release(img)

	path := filepath.Join(w.Dir, fmt.Sprintf("frame_%06d.png", w.saved))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("snapshot encode %s: %w", path, err)
	}
	w.saved++
	return nil
}

// Saved returns how many snapshots were written
func (w *SnapshotWriter) Saved() int {
	return w.saved
}
