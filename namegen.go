package gitpress

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewPostFileName returns a fresh post file name of the form
// <unix-millis>-<6 base36 chars>.mdx. The slug of the post is this name
// without the extension, fixed for the life of the document.
func NewPostFileName() string {
	return generatedName() + ".mdx"
}

// NewAssetFileName returns a fresh asset name that keeps the original
// file's extension (lowercased).
func NewAssetFileName(original string) string {
	return generatedName() + strings.ToLower(filepath.Ext(original))
}

// generatedName combines a millisecond timestamp with a short random
// suffix. Two names collide only when generated in the same millisecond
// with the same six-character suffix.
func generatedName() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}
