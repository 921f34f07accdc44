// Package markdown renders post bodies to HTML as templ components.
// The repository layer only ever exposes raw document text; this is the
// separate renderer the pages consume.
package markdown

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		// Post bodies are authored by the site admin, so raw HTML in
		// documents is allowed through.
		html.WithUnsafe(),
	),
)

// Render writes the HTML representation of source to w.
func Render(w io.Writer, source string) error {
	return md.Convert([]byte(source), w)
}

// Markdown returns a templ.Component that renders source as HTML.
func Markdown(source string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := Render(&buf, source); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}
