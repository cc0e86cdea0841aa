// Package markdown inspects generated Markdown bodies. The results are
// advisory: the pipeline warns about budget overruns but never rejects
// model output on structural grounds.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BodyStats summarizes a Markdown body (frontmatter already removed).
type BodyStats struct {
	Words      int
	Paragraphs int
	CodeBlocks int
}

// InspectBody parses a Markdown body with Goldmark and collects word,
// paragraph, and code-block counts.
func InspectBody(body []byte) BodyStats {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var stats BodyStats
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			stats.CodeBlocks++
		case *gmast.Paragraph:
			stats.Paragraphs++
		case *gmast.Text:
			segment := node.Segment
			stats.Words += len(strings.Fields(string(segment.Value(body))))
		}
		return gmast.WalkContinue, nil
	})

	return stats
}
