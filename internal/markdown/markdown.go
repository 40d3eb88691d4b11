// Package markdown converts recipe instructions from Markdown to HTML.
//
// Raw HTML in the source is omitted from the output and every rendered link
// carries rel="ugc".
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Renderer turns Markdown into an HTML string.
type Renderer interface {
	Render(markdown string) (string, error)
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

// New returns the default Renderer. It is safe for concurrent use.
func New() Renderer {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(ugcLinks{}, 100)),
		),
	)
	return &goldmarkRenderer{md: md}
}

func (r *goldmarkRenderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// ugcLinks tags links as user generated content.
type ugcLinks struct{}

func (ugcLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindLink, ast.KindAutoLink:
			n.SetAttributeString("rel", []byte("ugc"))
		}
		return ast.WalkContinue, nil
	})
}

var defaultRenderer = New()

// Default returns the process-wide renderer.
func Default() Renderer {
	return defaultRenderer
}

// Render converts markdown with the shared default renderer.
func Render(markdown string) (string, error) {
	return defaultRenderer.Render(markdown)
}
