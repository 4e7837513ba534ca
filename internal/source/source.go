package source

import (
	"errors"
	"image"
)

var (
	// ErrUnavailable is returned by Open when a camera cannot be used
	ErrUnavailable = errors.New("source unavailable")
	// ErrRead is returned by Read on a transient acquisition failure
	ErrRead = errors.New("frame read failed")
)

// Source is one opened camera feed with a fixed resolution.
// The image returned by Read is only valid until the next Read.
type Source interface {
	Name() string
	Size() image.Point
	Read() (image.Image, error)
	Close() error
}

// Opener opens the camera at a configured index
type Opener interface {
	Open(index int) (Source, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(index int) (Source, error)

func (f OpenerFunc) Open(index int) (Source, error) {
	return f(index)
}
