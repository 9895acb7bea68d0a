// Package canvas defines the capability surface the generation pipeline
// needs from a host sketch editor. The pipeline never reaches into a
// concrete editor's object model; it sees only selections, bounding boxes,
// a rasterizer, and an artifact upsert operation.
package canvas

import "context"

// ShapeID identifies a single element on the canvas.
type ShapeID string

// Selection is the ordered set of shape ids the user has selected. It is
// owned by the host editor; the pipeline only reads it during a run.
type Selection []ShapeID

// Point is a position in canvas page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width and height in canvas page units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Box is an axis-aligned bounding box in canvas page coordinates.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Union returns the smallest box covering both b and other.
func (b Box) Union(other Box) Box {
	x1 := min(b.X, other.X)
	y1 := min(b.Y, other.Y)
	x2 := max(b.X+b.W, other.X+other.W)
	y2 := max(b.Y+b.H, other.Y+other.H)
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// RasterOptions controls how a region is flattened into an image.
type RasterOptions struct {
	// Scale is the multiple of on-screen resolution to render at.
	Scale float64
	// MaxSide caps either pixel dimension of the output. The engine must
	// reduce the effective scale rather than fail when the cap is hit.
	MaxSide int
	// Background fills transparent areas; empty means white.
	Background string
}

// Raster is a flattened image of a canvas region.
type Raster struct {
	// PNG holds the encoded image bytes.
	PNG []byte
	// Width and Height are the pixel dimensions of the encoded image.
	Width  int
	Height int
}

// Engine is the narrow view of the host editor consumed by the pipeline.
// Implementations are expected to be safe for use from multiple goroutines,
// matching the guarantees of the editor's own state layer.
type Engine interface {
	// Selection returns the current selection. May be empty.
	Selection() Selection

	// BoundingBoxOf returns the union bounding box of the given shapes.
	// ok is false when none of the ids exist.
	BoundingBoxOf(ids []ShapeID) (box Box, ok bool)

	// Rasterize flattens the given shapes, including any artifact shapes
	// among them, into a single image.
	Rasterize(ctx context.Context, ids []ShapeID, opts RasterOptions) (*Raster, error)

	// Artifact returns the artifact shape with the given id, if any.
	Artifact(id ShapeID) (Artifact, bool)

	// UpsertArtifact creates the artifact shape if it does not exist and
	// applies the patch, returning the resulting state.
	UpsertArtifact(id ShapeID, patch ArtifactPatch) Artifact
}
