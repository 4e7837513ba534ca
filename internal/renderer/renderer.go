package renderer

import (
	"errors"
	"image"
	"io"
)

// Presenter crops frame to crop, resizes it to out and shows it somewhere.
// Presentation is best effort: a returned error never stops the tick loop.
type Presenter interface {
	Present(frame image.Image, crop image.Rectangle, out image.Point) error
}

// Quitter is polled once per tick for an operator termination request
type Quitter interface {
	Quit() bool
}

// Multi fans every frame out to several presenters
type Multi []Presenter

func (m Multi) Present(frame image.Image, crop image.Rectangle, out image.Point) error {
	var errs []error
	for _, p := range m {
		if err := p.Present(frame, crop, out); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Quit reports whether any member presenter asks to quit
func (m Multi) Quit() bool {
	for _, p := range m {
		if q, ok := p.(Quitter); ok && q.Quit() {
			return true
		}
	}
	return false
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
