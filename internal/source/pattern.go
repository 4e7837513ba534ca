package source

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"
)

// PatternOpener produces synthetic cameras for running without hardware.
// Each frame is a gradient tinted per camera with a QR code of the camera
// name in the middle and a bar sweeping across to show motion.
type PatternOpener struct {
	Width, Height int
}

func NewPatternOpener(width, height int) *PatternOpener {
	return &PatternOpener{Width: width, Height: height}
}

func (o *PatternOpener) Open(index int) (Source, error) {
	if o.Width < 1 || o.Height < 1 {
		return nil, fmt.Errorf("%w: pattern size %dx%d", ErrUnavailable, o.Width, o.Height)
	}

	name := fmt.Sprintf("pattern %d", index)
	base := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	tint := uint8(60 * (index % 4))
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			base.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * x / o.Width),
				G: uint8(255 * y / o.Height),
				B: tint,
				A: 255,
			})
		}
	}

	side := min(o.Width, o.Height) / 3
	if side >= 21 {
		qr, err := qrcode.New("multicam/"+name, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		code := qr.Image(side)
		at := image.Pt((o.Width-side)/2, (o.Height-side)/2)
		draw.Draw(base, image.Rectangle{Min: at, Max: at.Add(code.Bounds().Size())}, code, code.Bounds().Min, draw.Src)
	}

	return &pattern{
		name:  name,
		base:  base,
		frame: image.NewRGBA(base.Bounds()),
	}, nil
}

type pattern struct {
	name  string
	base  *image.RGBA
	frame *image.RGBA
	tick  int
}

const barWidth = 8

func (p *pattern) Name() string { return p.name }

func (p *pattern) Size() image.Point { return p.base.Bounds().Size() }

func (p *pattern) Read() (image.Image, error) {
	copy(p.frame.Pix, p.base.Pix)

	w := p.base.Bounds().Dx()
	x := (p.tick * barWidth) % w
	bar := image.Rect(x, 0, min(x+barWidth, w), p.base.Bounds().Dy())
	draw.Draw(p.frame, bar, image.White, image.Point{}, draw.Src)
	p.tick++

	return p.frame, nil
}

func (p *pattern) Close() error { return nil }
