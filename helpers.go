package gitpress

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

var (
	reMarkdownImage = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	reHTMLImage     = regexp.MustCompile(`<img[^>]*?src=["'](.*?)["']`)
	reHeading       = regexp.MustCompile(`#{1,6}\s`)
)

// FirstImage returns the first image URL referenced in a post body, from
// either Markdown or HTML img syntax, or "" when there is none. Views use
// it to pick a preview image.
func FirstImage(body string) string {
	if m := reMarkdownImage.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	if m := reHTMLImage.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

// previewTextMax bounds the preview length in runes.
const previewTextMax = 200

// PreviewText strips image syntax, heading markers, and newlines from a
// post body and returns the first 200 characters.
func PreviewText(body string) string {
	text := reMarkdownImage.ReplaceAllString(body, "")
	text = reHeading.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > previewTextMax {
		runes := []rune(text)
		return string(runes[:previewTextMax]) + "..."
	}
	return text
}
