// Package memcanvas is an in-memory canvas.Engine. It backs the test
// suite and local experimentation; a real deployment adapts the host
// editor's state layer instead.
package memcanvas

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/sketchwire/makereal/canvas"
)

// Shape is a minimal sketch element: a bounding box plus an optional text
// label.
type Shape struct {
	ID     canvas.ShapeID
	Bounds canvas.Box
	Label  string
}

// Engine is an in-memory canvas state store.
type Engine struct {
	mu        sync.Mutex
	shapes    map[canvas.ShapeID]Shape
	selection canvas.Selection
	artifacts map[canvas.ShapeID]canvas.Artifact

	// RasterizeErr, when set, makes Rasterize fail. Used to exercise the
	// extraction failure path.
	RasterizeErr error
}

func New() *Engine {
	return &Engine{
		shapes:    make(map[canvas.ShapeID]Shape),
		artifacts: make(map[canvas.ShapeID]canvas.Artifact),
	}
}

// AddShape inserts or replaces a shape.
func (e *Engine) AddShape(s Shape) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shapes[s.ID] = s
}

// Select sets the current selection.
func (e *Engine) Select(ids ...canvas.ShapeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = canvas.Selection(ids)
}

func (e *Engine) Selection() canvas.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(canvas.Selection, len(e.selection))
	copy(out, e.selection)
	return out
}

func (e *Engine) BoundingBoxOf(ids []canvas.ShapeID) (canvas.Box, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var box canvas.Box
	var found bool
	for _, id := range ids {
		b, ok := e.boundsOf(id)
		if !ok {
			continue
		}
		if !found {
			box = b
			found = true
			continue
		}
		box = box.Union(b)
	}
	return box, found
}

func (e *Engine) boundsOf(id canvas.ShapeID) (canvas.Box, bool) {
	if s, ok := e.shapes[id]; ok {
		return s.Bounds, true
	}
	if a, ok := e.artifacts[id]; ok {
		return canvas.Box{X: a.Position.X, Y: a.Position.Y, W: a.Size.W, H: a.Size.H}, true
	}
	return canvas.Box{}, false
}

// Rasterize flattens the shapes into a synthetic PNG: a white sheet with
// a filled gray rectangle per shape. Enough structure for round-trip
// tests; real engines render actual strokes.
func (e *Engine) Rasterize(ctx context.Context, ids []canvas.ShapeID, opts canvas.RasterOptions) (*canvas.Raster, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.RasterizeErr != nil {
		return nil, e.RasterizeErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var region canvas.Box
	var found bool
	for _, id := range ids {
		b, ok := e.boundsOf(id)
		if !ok {
			continue
		}
		if !found {
			region, found = b, true
		} else {
			region = region.Union(b)
		}
	}
	if !found {
		return nil, fmt.Errorf("memcanvas: no renderable shapes")
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	// Reduce the scale instead of failing when the pixel budget is hit.
	if opts.MaxSide > 0 {
		longest := max(region.W, region.H)
		if longest*scale > float64(opts.MaxSide) {
			scale = float64(opts.MaxSide) / longest
		}
	}

	w := max(1, int(region.W*scale))
	h := max(1, int(region.H*scale))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	gray := color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	for _, id := range ids {
		b, ok := e.boundsOf(id)
		if !ok {
			continue
		}
		x0 := int((b.X - region.X) * scale)
		y0 := int((b.Y - region.Y) * scale)
		x1 := min(w, int((b.X-region.X+b.W)*scale))
		y1 := min(h, int((b.Y-region.Y+b.H)*scale))
		for y := max(0, y0); y < y1; y++ {
			for x := max(0, x0); x < x1; x++ {
				img.SetRGBA(x, y, gray)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &canvas.Raster{PNG: buf.Bytes(), Width: w, Height: h}, nil
}

func (e *Engine) Artifact(id canvas.ShapeID) (canvas.Artifact, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.artifacts[id]
	return a, ok
}

func (e *Engine) UpsertArtifact(id canvas.ShapeID, patch canvas.ArtifactPatch) canvas.Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.artifacts[id]
	if !ok {
		a = canvas.Artifact{ID: id}
	}
	patch.Apply(&a)
	e.artifacts[id] = a
	return a
}

// Artifacts returns a copy of all artifact shapes, for assertions.
func (e *Engine) Artifacts() []canvas.Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]canvas.Artifact, 0, len(e.artifacts))
	for _, a := range e.artifacts {
		out = append(out, a)
	}
	return out
}
