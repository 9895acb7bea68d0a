// Package render implements the artifact's display contract: how
// generated markup is shown inside an isolated context, how the artifact
// reports its natural size back to the canvas layout, and how it degrades
// to a placeholder when there is nothing renderable.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sketchwire/makereal/canvas"
)

// Mode selects how an artifact is observed.
type Mode int

const (
	// Interactive renders the markup live so the user can click through
	// the generated UI.
	Interactive Mode = iota
	// Static flattens the markup into a bitmap, used when the canvas
	// itself is exported. Embedding a live foreign execution context in
	// an export is neither safe nor reliable.
	Static
)

// SandboxAttributes is the sandbox attribute value hosts must set on the
// frame that displays an interactive document. Scripts run, but without
// same-origin access the frame cannot touch host canvas state.
const SandboxAttributes = "allow-scripts allow-forms allow-popups"

// sizeReportScript posts the document's natural size to the embedding
// host, which forwards it to the canvas layout system.
const sizeReportScript = `<script>
(function () {
	function report() {
		var d = document.documentElement;
		parent.postMessage({
			type: "makereal:size",
			width: Math.max(d.scrollWidth, d.offsetWidth),
			height: Math.max(d.scrollHeight, d.offsetHeight)
		}, "*");
	}
	window.addEventListener("load", report);
	window.addEventListener("resize", report);
})();
</script>`

var sanitizePolicy = newSanitizePolicy()

func newSanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Generated UIs style themselves through utility classes; stripping
	// class attributes would leave an unstyled skeleton.
	p.AllowAttrs("class").Globally()
	p.AllowElements("button", "input", "label", "select", "option", "textarea", "form", "nav", "header", "footer", "section", "main", "aside")
	p.AllowAttrs("type", "placeholder", "value", "name", "disabled", "checked").OnElements("input", "button", "select", "option", "textarea")
	return p
}

// InteractiveDocument returns the full document to load into a sandboxed
// frame, with the size-report script injected. ok is false when the
// artifact has nothing renderable, in which case a fallback document is
// returned instead.
func InteractiveDocument(a canvas.Artifact) (doc string, ok bool) {
	if a.Status != canvas.StatusReady || strings.TrimSpace(a.Markup) == "" {
		return FallbackDocument(a), false
	}
	return injectSizeReport(a.Markup), true
}

// SanitizedDocument returns a scrubbed rendition of the markup for
// surfaces that cannot provide full frame isolation. Scripts, event
// handlers, and foreign embeds are removed.
func SanitizedDocument(a canvas.Artifact) (string, bool) {
	if a.Status != canvas.StatusReady || strings.TrimSpace(a.Markup) == "" {
		return FallbackDocument(a), false
	}
	return sanitizePolicy.Sanitize(a.Markup), true
}

// FallbackDocument is the placeholder shown while generation is pending,
// after it failed, or when the markup cannot be displayed.
func FallbackDocument(a canvas.Artifact) string {
	var label string
	switch a.Status {
	case canvas.StatusPending:
		label = "Generating…"
	case canvas.StatusFailed:
		label = "Generation failed"
		if a.FailureReason != "" {
			label = fmt.Sprintf("Generation failed: %s", a.FailureReason)
		}
	default:
		label = "Nothing to show"
	}
	return fmt.Sprintf(`<!doctype html>
<html><body style="display:flex;align-items:center;justify-content:center;height:100vh;margin:0;font-family:sans-serif;color:#666;background:#fafafa">
<div>%s</div>
</body></html>`, html.EscapeString(label))
}

// injectSizeReport places the size-report script before </body>, or
// appends it when the markup has no closing body tag.
func injectSizeReport(markup string) string {
	lower := strings.ToLower(markup)
	if i := strings.LastIndex(lower, "</body>"); i >= 0 {
		return markup[:i] + sizeReportScript + markup[i:]
	}
	return markup + sizeReportScript
}
