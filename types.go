package gitpress

// Post is the core content type. It is parsed from an .mdx file in the
// content repository and cached by the repository layer; callers receive
// value copies and must not expect writes to a Post to stick.
type Post struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM-DD
	Published   bool   `json:"published"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Raw         string `json:"raw"`         // complete file text, front matter included
	ReadingTime int    `json:"readingTime"` // estimated minutes, derived from Raw length
}

// Asset describes one file under the assets root and, when some post body
// references its file name, the post that uses it. The post relationship is
// recomputed on every listing, never stored.
type Asset struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	PostSlug  string `json:"postSlug,omitempty"`
	PostTitle string `json:"postTitle,omitempty"`
}

// AssetFile is a fetched asset body with its content type and revision token.
type AssetFile struct {
	Data        []byte
	ContentType string
	SHA         string
}

// PostCounts summarizes the post corpus for the cache debug endpoint.
type PostCounts struct {
	Total     int `json:"total"`
	Published int `json:"published"`
}

// CacheInfo is the cache debug payload exposed to the admin API.
type CacheInfo struct {
	Initialized bool                      `json:"initialized"`
	Enabled     bool                      `json:"enabled"`
	Posts       PostCounts                `json:"posts"`
	Entries     map[string]CacheEntryInfo `json:"entries"`
}
