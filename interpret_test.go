package makereal_test

import (
	"testing"

	"github.com/sketchwire/makereal"
)

func TestInterpretFencedWithProse(t *testing.T) {
	raw := "Sure! Here is the interface you asked for:\n\n```html\n<button>Login</button>\n```\n\nLet me know if you want changes."

	got, err := makereal.InterpretResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "<button>Login</button>" {
		t.Errorf("got %q", got)
	}
}

func TestInterpretBareFence(t *testing.T) {
	raw := "```\n<!doctype html>\n<html><body>hi</body></html>\n```"

	got, err := makereal.InterpretResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := "<!doctype html>\n<html><body>hi</body></html>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInterpretUnfencedAnswer(t *testing.T) {
	raw := "  <div>plain</div>\n"

	got, err := makereal.InterpretResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "<div>plain</div>" {
		t.Errorf("got %q", got)
	}
}

func TestInterpretFirstFenceWins(t *testing.T) {
	raw := "```html\n<p>one</p>\n```\nand also\n```html\n<p>two</p>\n```"

	got, err := makereal.InterpretResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "<p>one</p>" {
		t.Errorf("got %q", got)
	}
}

func TestInterpretEmptyAnswer(t *testing.T) {
	for _, raw := range []string{"", "   \n\t", "```html\n\n```"} {
		_, err := makereal.InterpretResponse(raw)
		if makereal.KindOf(err) != makereal.EmptyGeneration {
			t.Errorf("raw %q: expected empty generation error, got %v", raw, err)
		}
	}
}
