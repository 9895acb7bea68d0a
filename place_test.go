package makereal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sketchwire/makereal"
	"github.com/sketchwire/makereal/canvas"
)

func extractForTest(t *testing.T, eng canvas.Engine, sel canvas.Selection) *makereal.Snapshot {
	t.Helper()
	snap, err := makereal.ExtractSnapshot(context.Background(), eng, sel)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestTargetForIsDeterministic(t *testing.T) {
	eng := newTestEngine()
	sel := canvas.Selection{"rect1", "text1"}

	a := makereal.TargetFor(eng, sel)
	b := makereal.TargetFor(eng, canvas.Selection{"text1", "rect1"})
	if a != b {
		t.Errorf("selection order changed target: %q vs %q", a, b)
	}
}

func TestTargetForReusesSingleArtifact(t *testing.T) {
	eng := newTestEngine()
	ready := canvas.StatusReady
	eng.UpsertArtifact("art1", canvas.ArtifactPatch{Status: &ready})

	got := makereal.TargetFor(eng, canvas.Selection{"rect1", "art1"})
	if got != "art1" {
		t.Errorf("expected regeneration target art1, got %q", got)
	}
}

func TestPlacementPositionIsIdempotent(t *testing.T) {
	eng := newTestEngine()
	placer := makereal.NewPlacer(eng)
	sel := canvas.Selection{"rect1", "text1"}
	snap := extractForTest(t, eng, sel)
	target := makereal.TargetFor(eng, sel)

	_, tok1 := placer.Begin(context.Background(), target, snap)
	placer.Complete(target, tok1, "<p>v1</p>", snap)
	first, _ := eng.Artifact(target)

	_, tok2 := placer.Begin(context.Background(), target, snap)
	placer.Complete(target, tok2, "<p>v2</p>", snap)
	second, _ := eng.Artifact(target)

	if diff := cmp.Diff(first.Position, second.Position); diff != "" {
		t.Errorf("position moved between generations (-first +second):\n%s", diff)
	}
	// Selection bounds are {100,100,200,120}; the artifact sits to the
	// right with a fixed margin.
	want := canvas.Point{X: 360, Y: 100}
	if diff := cmp.Diff(want, second.Position); diff != "" {
		t.Errorf("position mismatch (-want +got):\n%s", diff)
	}
}

func TestBeginPlacesPendingArtifact(t *testing.T) {
	eng := newTestEngine()
	placer := makereal.NewPlacer(eng)
	sel := canvas.Selection{"rect1"}
	snap := extractForTest(t, eng, sel)
	target := makereal.TargetFor(eng, sel)

	placer.Begin(context.Background(), target, snap)

	a, ok := eng.Artifact(target)
	if !ok {
		t.Fatal("expected artifact to exist immediately")
	}
	if a.Status != canvas.StatusPending {
		t.Errorf("status = %q, want pending", a.Status)
	}
	if a.Version != 0 {
		t.Errorf("version = %d, want 0 before first success", a.Version)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	eng := newTestEngine()
	placer := makereal.NewPlacer(eng)
	sel := canvas.Selection{"rect1"}
	snap := extractForTest(t, eng, sel)
	target := makereal.TargetFor(eng, sel)

	runACtx, tokA := placer.Begin(context.Background(), target, snap)
	_, tokB := placer.Begin(context.Background(), target, snap)

	if runACtx.Err() == nil {
		t.Error("expected run A context to be cancelled on supersession")
	}

	if !placer.Complete(target, tokB, "<p>from B</p>", snap) {
		t.Fatal("run B result rejected")
	}
	// A resolves after B: its result must be discarded.
	if placer.Complete(target, tokA, "<p>from A</p>", snap) {
		t.Fatal("stale run A result was applied")
	}

	a, _ := eng.Artifact(target)
	if a.Markup != "<p>from B</p>" {
		t.Errorf("markup = %q, want run B's result", a.Markup)
	}
	if a.Version != 1 {
		t.Errorf("version = %d, want 1", a.Version)
	}
}

func TestCompleteBumpsVersionAndLineage(t *testing.T) {
	eng := newTestEngine()
	placer := makereal.NewPlacer(eng)
	sel := canvas.Selection{"rect1", "text1"}
	snap := extractForTest(t, eng, sel)
	target := makereal.TargetFor(eng, sel)

	for i := 1; i <= 3; i++ {
		_, tok := placer.Begin(context.Background(), target, snap)
		placer.Complete(target, tok, "<p>v</p>", snap)
	}

	a, _ := eng.Artifact(target)
	if a.Version != 3 {
		t.Errorf("version = %d, want 3", a.Version)
	}
	if diff := cmp.Diff([]canvas.ShapeID{"rect1", "text1"}, a.SourceShapeIDs); diff != "" {
		t.Errorf("lineage mismatch (-want +got):\n%s", diff)
	}
	if a.Status != canvas.StatusReady {
		t.Errorf("status = %q, want ready", a.Status)
	}
}

func TestFailWithoutPriorVersion(t *testing.T) {
	eng := newTestEngine()
	placer := makereal.NewPlacer(eng)
	sel := canvas.Selection{"rect1"}
	snap := extractForTest(t, eng, sel)
	target := makereal.TargetFor(eng, sel)

	_, tok := placer.Begin(context.Background(), target, snap)
	placer.Fail(target, tok, errors.New("boom"))

	a, _ := eng.Artifact(target)
	if a.Status != canvas.StatusFailed {
		t.Errorf("status = %q, want failed", a.Status)
	}
	if a.FailureReason != "boom" {
		t.Errorf("failure reason = %q", a.FailureReason)
	}
}

func TestFailDoesNotRegressReadyVersion(t *testing.T) {
	eng := newTestEngine()
	placer := makereal.NewPlacer(eng)
	sel := canvas.Selection{"rect1"}
	snap := extractForTest(t, eng, sel)
	target := makereal.TargetFor(eng, sel)

	_, tok := placer.Begin(context.Background(), target, snap)
	placer.Complete(target, tok, "<p>good</p>", snap)

	_, tok = placer.Begin(context.Background(), target, snap)
	placer.Fail(target, tok, errors.New("service unavailable"))

	a, _ := eng.Artifact(target)
	if a.Status != canvas.StatusReady {
		t.Errorf("status = %q, want ready (last known good)", a.Status)
	}
	if a.Markup != "<p>good</p>" {
		t.Errorf("markup regressed to %q", a.Markup)
	}
	if a.Version != 1 {
		t.Errorf("version = %d, want 1", a.Version)
	}
}
