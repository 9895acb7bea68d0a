package makereal

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/sketchwire/makereal/canvas"
)

// placementMargin is the fixed gap between the source selection and the
// artifact placed beside it.
const placementMargin = 60.0

// RunToken identifies one generation attempt for a target artifact. Tokens
// are assigned monotonically; placement only applies a result whose token
// is still the latest recorded for its target, so a late result from a
// superseded run can never overwrite newer state.
type RunToken uint64

// Placer owns artifact placement and the run-token discipline. At most one
// run per target is live at a time; different targets run independently.
type Placer struct {
	eng canvas.Engine

	mu      sync.Mutex
	next    RunToken
	latest  map[canvas.ShapeID]RunToken
	cancels map[canvas.ShapeID]context.CancelFunc
}

func NewPlacer(eng canvas.Engine) *Placer {
	return &Placer{
		eng:     eng,
		latest:  make(map[canvas.ShapeID]RunToken),
		cancels: make(map[canvas.ShapeID]context.CancelFunc),
	}
}

// TargetFor derives the artifact id a generation run will write to. A
// selection containing exactly one artifact regenerates that artifact;
// otherwise the id is derived from the sorted source ids, so the same
// selection always maps to the same target.
func TargetFor(eng canvas.Engine, sel canvas.Selection) canvas.ShapeID {
	var artifactID canvas.ShapeID
	var count int
	for _, id := range sel {
		if _, ok := eng.Artifact(id); ok {
			artifactID = id
			count++
		}
	}
	if count == 1 {
		return artifactID
	}

	sorted := slices.Clone(sel)
	slices.Sort(sorted)
	h := fnv.New64a()
	for _, id := range sorted {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return canvas.ShapeID(fmt.Sprintf("artifact:%016x", h.Sum64()))
}

// Begin records a new run for targetID, superseding any run still in
// flight, and upserts the artifact in pending status so the user sees
// progress immediately. The returned context is cancelled when a later run
// supersedes this one.
func (p *Placer) Begin(ctx context.Context, targetID canvas.ShapeID, snap *Snapshot) (context.Context, RunToken) {
	p.mu.Lock()
	if cancel, ok := p.cancels[targetID]; ok {
		cancel()
	}
	p.next++
	token := p.next
	p.latest[targetID] = token
	runCtx, cancel := context.WithCancel(ctx)
	p.cancels[targetID] = cancel
	p.mu.Unlock()

	pending := canvas.StatusPending
	patch := canvas.ArtifactPatch{Status: &pending}
	if _, exists := p.eng.Artifact(targetID); !exists {
		pos := placementFor(snap.Bounds)
		size := canvas.Size{W: snap.Bounds.W, H: snap.Bounds.H}
		patch.Position = &pos
		patch.Size = &size
	}
	p.eng.UpsertArtifact(targetID, patch)

	return runCtx, token
}

// Complete applies a successful result: markup is stored, the version is
// bumped, and source lineage recorded. Returns false when the run was
// superseded and the result discarded.
func (p *Placer) Complete(targetID canvas.ShapeID, token RunToken, markup string, snap *Snapshot) bool {
	if !p.finish(targetID, token) {
		return false
	}

	a, _ := p.eng.Artifact(targetID)
	ready := canvas.StatusReady
	version := a.Version + 1
	reason := ""
	p.eng.UpsertArtifact(targetID, canvas.ArtifactPatch{
		Markup:         &markup,
		SourceShapeIDs: slices.Clone(snap.SourceShapeIDs),
		Version:        &version,
		Status:         &ready,
		FailureReason:  &reason,
	})
	return true
}

// Fail applies a failed result. When a successful version already exists
// the visible artifact is not regressed: it returns to ready status with
// its last-known-good markup, and the failure is only reported to the
// user. Returns false when the run was superseded.
func (p *Placer) Fail(targetID canvas.ShapeID, token RunToken, cause error) bool {
	if !p.finish(targetID, token) {
		return false
	}

	a, _ := p.eng.Artifact(targetID)
	if a.Version > 0 {
		ready := canvas.StatusReady
		p.eng.UpsertArtifact(targetID, canvas.ArtifactPatch{Status: &ready})
		return true
	}

	failed := canvas.StatusFailed
	reason := cause.Error()
	p.eng.UpsertArtifact(targetID, canvas.ArtifactPatch{
		Status:        &failed,
		FailureReason: &reason,
	})
	return true
}

// finish reports whether token is still the latest run for targetID and,
// if so, retires it.
func (p *Placer) finish(targetID canvas.ShapeID, token RunToken) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest[targetID] != token {
		return false
	}
	if cancel, ok := p.cancels[targetID]; ok {
		cancel()
		delete(p.cancels, targetID)
	}
	return true
}

// placementFor positions a new artifact directly to the right of the
// source bounding box so repeated generations from the same area land in
// the same place.
func placementFor(bounds canvas.Box) canvas.Point {
	return canvas.Point{
		X: bounds.X + bounds.W + placementMargin,
		Y: bounds.Y,
	}
}
