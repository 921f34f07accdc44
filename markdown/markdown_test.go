package markdown

import (
	"context"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	var b strings.Builder
	err := Render(&b, "# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "<h1") {
		t.Errorf("output missing heading: %q", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("output missing bold span: %q", out)
	}
}

func TestRenderGFMTable(t *testing.T) {
	var b strings.Builder
	err := Render(&b, "| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(b.String(), "<table>") {
		t.Errorf("GFM tables should render, got %q", b.String())
	}
}

func TestRenderRawHTMLPassthrough(t *testing.T) {
	var b strings.Builder
	err := Render(&b, "before\n\n<figure>x</figure>\n\nafter")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(b.String(), "<figure>") {
		t.Errorf("raw HTML should pass through, got %q", b.String())
	}
}

func TestMarkdownComponent(t *testing.T) {
	var b strings.Builder
	if err := Markdown("*em*").Render(context.Background(), &b); err != nil {
		t.Fatalf("component render failed: %v", err)
	}
	if !strings.Contains(b.String(), "<em>em</em>") {
		t.Errorf("output = %q", b.String())
	}
}
