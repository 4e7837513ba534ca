package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MatFrame exposes a BGR Mat as an image.Image without copying. Renderers
// backed by OpenCV use the Mat directly; the others go through At.
type MatFrame struct {
	Mat gocv.Mat
}

func (f *MatFrame) ColorModel() color.Model {
	return color.RGBAModel
}

func (f *MatFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Mat.Cols(), f.Mat.Rows())
}

func (f *MatFrame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Mat.Cols() || y >= f.Mat.Rows() {
		return color.RGBA{}
	}
	switch f.Mat.Channels() {
	case 1:
		v := f.Mat.GetUCharAt(y, x)
		return color.RGBA{v, v, v, 255}
	default:
		bgr := f.Mat.GetVecbAt(y, x)
		return color.RGBA{R: bgr[2], G: bgr[1], B: bgr[0], A: 255}
	}
}
