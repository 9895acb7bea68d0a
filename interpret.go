package makereal

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var interpretMarkdown = goldmark.New()

// InterpretResponse locates the generated document inside the model's
// free-form answer. Models routinely wrap the document in code fences and
// surround it with commentary; the answer is parsed as markdown and the
// first fenced block wins. An answer with no fences is taken whole.
func InterpretResponse(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", NewEmptyGenerationError()
	}

	if fenced, ok := firstFencedBlock(trimmed); ok {
		fenced = strings.TrimSpace(fenced)
		if fenced == "" {
			return "", NewEmptyGenerationError()
		}
		return fenced, nil
	}
	return trimmed, nil
}

func firstFencedBlock(answer string) (string, bool) {
	source := []byte(answer)
	doc := interpretMarkdown.Parser().Parse(text.NewReader(source))

	var block *ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fc, ok := n.(*ast.FencedCodeBlock); ok {
			block = fc
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if block == nil {
		return "", false
	}

	var b strings.Builder
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String(), true
}
