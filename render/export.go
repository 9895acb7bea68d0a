package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	"github.com/sketchwire/makereal"
	"github.com/sketchwire/makereal/canvas"
)

// Rasterizer flattens an HTML document into an encoded bitmap.
// render/headless provides the production implementation.
type Rasterizer interface {
	RasterizeHTML(ctx context.Context, doc string, width, height int) ([]byte, error)
}

// ExportShape produces the static representation of an artifact for a
// canvas export. On any render failure it falls back to a blank
// placeholder bitmap rather than failing the export; the returned error
// carries the render failure for logging.
func ExportShape(ctx context.Context, r Rasterizer, a canvas.Artifact) ([]byte, error) {
	w, h := pixelSize(a.Size)

	doc, ok := InteractiveDocument(a)
	if !ok || r == nil {
		return placeholderPNG(w, h), nil
	}

	bin, err := r.RasterizeHTML(ctx, doc, w, h)
	if err != nil {
		return placeholderPNG(w, h), makereal.NewRenderFailureError(err)
	}
	return bin, nil
}

func pixelSize(s canvas.Size) (int, int) {
	w, h := int(s.W), int(s.H)
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return w, h
}

// placeholderPNG is a flat light-gray bitmap standing in for content that
// could not be rendered.
func placeholderPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
