package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzPDF rasterizes PDF pages through go-fitz
type FitzPDF struct {
	doc *fitz.Document
	dpi int
}

func NewFitzPDF(path string, dpi int) (*FitzPDF, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 96
	}
	return &FitzPDF{doc: doc, dpi: dpi}, nil
}

func (f *FitzPDF) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDF) RenderPage(index int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzPDF) Close() error {
	return f.doc.Close()
}
