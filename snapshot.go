// Package makereal turns a selected region of a sketch canvas into
// generated, runnable HTML via a hosted multimodal completion model, and
// places the result back onto the canvas as a versioned artifact shape.
package makereal

import (
	"context"
	"slices"

	"github.com/sketchwire/makereal/canvas"
)

// Raster policy: render at twice on-screen resolution so the model can read
// hand-written labels, but never exceed maxRasterSide pixels per dimension.
const (
	rasterScale   = 2.0
	maxRasterSide = 4096
)

// Snapshot is an immutable capture of a canvas selection prepared for
// transmission. It is built fresh per generation run and discarded after
// the run completes.
type Snapshot struct {
	Image          canvas.Raster
	PriorMarkup    *string
	SourceShapeIDs []canvas.ShapeID
	Bounds         canvas.Box
}

// ExtractSnapshot flattens the selected shapes into a raster image and
// carries through prior generated markup when the selection contains
// exactly one artifact in ready status, so the model can revise instead of
// regenerating from scratch.
func ExtractSnapshot(ctx context.Context, eng canvas.Engine, sel canvas.Selection) (*Snapshot, error) {
	if len(sel) == 0 {
		return nil, NewEmptySelectionError()
	}

	bounds, ok := eng.BoundingBoxOf(sel)
	if !ok {
		return nil, NewEmptySelectionError()
	}

	raster, err := eng.Rasterize(ctx, sel, canvas.RasterOptions{
		Scale:   rasterScale,
		MaxSide: maxRasterSide,
	})
	if err != nil {
		return nil, NewRasterizationError(err)
	}

	snap := &Snapshot{
		Image:          *raster,
		SourceShapeIDs: slices.Clone(sel),
		Bounds:         bounds,
	}

	if markup, ok := priorReadyMarkup(eng, sel); ok {
		snap.PriorMarkup = &markup
	}
	return snap, nil
}

// priorReadyMarkup returns the markup of the single ready artifact in the
// selection. Zero or multiple artifacts mean there is no unambiguous prior
// version to revise.
func priorReadyMarkup(eng canvas.Engine, sel canvas.Selection) (string, bool) {
	var markup string
	var found bool
	for _, id := range sel {
		a, ok := eng.Artifact(id)
		if !ok || a.Status != canvas.StatusReady {
			continue
		}
		if found {
			return "", false
		}
		markup = a.Markup
		found = true
	}
	return markup, found
}
