package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StillOpener turns images or PDF pages into fixed cameras: index i is
// the i-th image of a directory (sorted by name) or the i-th page of a PDF.
type StillOpener struct {
	path  string
	paths []string
	pdf   *FitzPDF
}

// NewStillOpener scans a directory of JPEG/PNG images, a single image, or a PDF
func NewStillOpener(path string, dpi int) (*StillOpener, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		doc, err := NewFitzPDF(path, dpi)
		if err != nil {
			return nil, err
		}
		return &StillOpener{path: path, pdf: doc}, nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}

	return &StillOpener{path: path, paths: paths}, nil
}

// Count returns how many still cameras are available
func (o *StillOpener) Count() int {
	if o.pdf != nil {
		return o.pdf.PageCount()
	}
	return len(o.paths)
}

func (o *StillOpener) Open(index int) (Source, error) {
	if index < 0 || index >= o.Count() {
		return nil, fmt.Errorf("%w: still %d of %d", ErrUnavailable, index, o.Count())
	}

	if o.pdf != nil {
		img, err := o.pdf.RenderPage(index)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnavailable, index, err)
		}
		return newStill(fmt.Sprintf("%s#%d", filepath.Base(o.path), index+1), img), nil
	}

	img, err := decodeImage(o.paths[index])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return newStill(filepath.Base(o.paths[index]), img), nil
}

// Close releases the PDF document if one is open
func (o *StillOpener) Close() error {
	if o.pdf != nil {
		return o.pdf.Close()
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// still is a camera that always shows the same picture
type still struct {
	name string
	img  image.Image
}

func newStill(name string, img image.Image) *still {
	return &still{name: name, img: img}
}

func (s *still) Name() string { return s.name }

func (s *still) Size() image.Point { return s.img.Bounds().Size() }

func (s *still) Read() (image.Image, error) { return s.img, nil }

func (s *still) Close() error { return nil }
