package lint

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var inlineRefPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// extractInlineRefs returns every [[id]] reference in markdown prose.
//
// The markdown is parsed first so code blocks and code spans can be
// masked out; the regex then runs over the masked source. Masking with
// spaces instead of deleting keeps byte offsets valid.
func extractInlineRefs(content string) []string {
	if !strings.Contains(content, "[[") {
		return nil
	}

	source := []byte(content)
	masked := maskCodeRegions(source)

	var refs []string
	for _, match := range inlineRefPattern.FindAllSubmatch(masked, -1) {
		ref := strings.TrimSpace(string(match[1]))
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// maskCodeRegions blanks the bytes of every code block and code span so
// reference markers inside them never match.
func maskCodeRegions(source []byte) []byte {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	masked := make([]byte, len(source))
	copy(masked, source)
	blank := func(start, stop int) {
		for i := start; i < stop && i < len(masked); i++ {
			if masked[i] != '\n' {
				masked[i] = ' '
			}
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				blank(seg.Start, seg.Stop)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					blank(t.Segment.Start, t.Segment.Stop)
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return masked
}
