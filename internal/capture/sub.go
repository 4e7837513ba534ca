package capture

import (
	"image"
	"image/color"
)

// SubImage copies a region of the Mat into an RGBA image through OpenCV.
// Its bounds start at the origin, not at r.Min.
func (f *MatFrame) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(f.Bounds())
	if r.Empty() {
		return image.NewRGBA(image.Rectangle{})
	}

	region := f.Mat.Region(r)
	defer region.Close()
	clone := region.Clone()
	defer clone.Close()

	img, err := clone.ToImage()
	if err != nil {
		return &matView{frame: f, r: r}
	}
	return img
}

// matView is the slow fallback reading pixels one by one
type matView struct {
	frame *MatFrame
	r     image.Rectangle
}

func (v *matView) ColorModel() color.Model { return color.RGBAModel }

func (v *matView) Bounds() image.Rectangle { return v.r }

func (v *matView) At(x, y int) color.Color { return v.frame.At(x, y) }
