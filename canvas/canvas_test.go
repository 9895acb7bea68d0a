package canvas_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sketchwire/makereal/canvas"
)

func TestBoxUnion(t *testing.T) {
	a := canvas.Box{X: 0, Y: 0, W: 10, H: 10}
	b := canvas.Box{X: 20, Y: 5, W: 10, H: 10}

	got := a.Union(b)
	want := canvas.Box{X: 0, Y: 0, W: 30, H: 15}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("union mismatch (-want +got):\n%s", diff)
	}
}

func TestArtifactPatchApply(t *testing.T) {
	a := canvas.Artifact{
		ID:      "art1",
		Markup:  "<p>old</p>",
		Version: 2,
		Status:  canvas.StatusReady,
	}

	ready := canvas.StatusPending
	patch := canvas.ArtifactPatch{Status: &ready}
	patch.Apply(&a)

	if a.Status != canvas.StatusPending {
		t.Errorf("status = %q", a.Status)
	}
	// Untouched fields survive.
	if a.Markup != "<p>old</p>" || a.Version != 2 {
		t.Errorf("patch clobbered unrelated fields: %+v", a)
	}
}
