package gitpress

import (
	"context"
	"errors"
	"log"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	postsDir      = "content/posts"
	assetsDir     = "content/assets"
	postExt       = ".mdx"
	cacheKeyPosts = "posts"

	// Reading speed assumed by the estimated reading time, in characters
	// of raw document text per minute.
	readingTimeChars = 500
)

// unusedGroup labels assets no post body references.
const unusedGroup = "unused"

// Repository orchestrates the content store, parser, and cache. It is the
// sole writer of cache entries; every successful mutation invalidates the
// cache before returning, so the next read refetches authoritative state
// and readers never see a mix of stale and fresh data.
type Repository struct {
	store ContentStore
	cache *Cache
}

// NewRepository wires a Repository. Both dependencies are injected so tests
// can substitute fakes; construct one per process and share it.
func NewRepository(store ContentStore, cache *Cache) *Repository {
	return &Repository{store: store, cache: cache}
}

// fetchAllPosts reads and parses every post file from the remote store.
// A document with broken front matter is logged and skipped so one corrupt
// record cannot take down the whole listing.
func (r *Repository) fetchAllPosts(ctx context.Context) ([]Post, error) {
	entries, err := r.store.ReadDir(ctx, postsDir)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil // empty content repository
		}
		return nil, err
	}

	var posts []Post
	for _, e := range entries {
		if e.Type != "file" || !strings.HasSuffix(e.Name, postExt) {
			continue
		}
		f, err := r.store.ReadFile(ctx, e.Path)
		if err != nil {
			return nil, err
		}
		raw := string(f.Content)
		meta, _, err := ParseDocument(raw)
		if err != nil {
			log.Printf("gitpress: skipping %s: %v", e.Path, err)
			continue
		}
		slug := strings.TrimSuffix(e.Name, postExt)
		topic := meta.Topic
		if topic == "" {
			topic = "uncategorized"
		}
		posts = append(posts, Post{
			Slug:        slug,
			Title:       meta.Title,
			Date:        meta.Date,
			Published:   meta.Published,
			Topic:       topic,
			Description: meta.Description,
			URL:         "/posts/" + slug,
			Raw:         raw,
			ReadingTime: (len(raw) + readingTimeChars - 1) / readingTimeChars,
		})
	}

	// Date descending; the stable sort keeps store listing order for ties.
	sort.SliceStable(posts, func(i, j int) bool {
		return laterDate(posts[i].Date, posts[j].Date)
	})
	return posts, nil
}

// laterDate reports whether a sorts before b in date-descending order.
func laterDate(a, b string) bool {
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	if errA == nil && errB == nil {
		return ta.After(tb)
	}
	return a > b
}

// ListPosts returns posts sorted by publish date descending. The cache key
// "posts" always holds the full unfiltered set; the published filter runs
// after cache retrieval so toggling it never costs a fetch.
func (r *Repository) ListPosts(ctx context.Context, includeUnpublished bool) ([]Post, error) {
	v, err := r.cache.Get(cacheKeyPosts, func() (any, error) {
		posts, err := r.fetchAllPosts(ctx)
		return posts, err
	})
	if err != nil {
		return nil, err
	}
	posts, _ := v.([]Post)

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if includeUnpublished || p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetPost finds a single post by slug, or ErrNotFound.
func (r *Repository) GetPost(ctx context.Context, slug string, includeUnpublished bool) (Post, error) {
	posts, err := r.ListPosts(ctx, includeUnpublished)
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// ListPostsByTopic returns posts whose topic matches case-insensitively,
// date descending. The result includes unpublished posts; callers that
// serve the public site filter to published at the transport boundary.
func (r *Repository) ListPostsByTopic(ctx context.Context, topic string) ([]Post, error) {
	posts, err := r.ListPosts(ctx, true)
	if err != nil {
		return nil, err
	}
	var out []Post
	for _, p := range posts {
		if strings.EqualFold(p.Topic, topic) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListTopics returns the distinct topics of published posts in first-seen
// order from the full listing.
func (r *Repository) ListTopics(ctx context.Context) ([]string, error) {
	posts, err := r.ListPosts(ctx, true)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var topics []string
	for _, p := range posts {
		if !p.Published {
			continue
		}
		if _, ok := seen[p.Topic]; ok {
			continue
		}
		seen[p.Topic] = struct{}{}
		topics = append(topics, p.Topic)
	}
	return topics, nil
}

// CreatePost validates raw's front matter, writes it under a freshly
// generated file name, and invalidates the cache. The slug is fixed here:
// it is the generated name without extension and never changes afterward.
func (r *Repository) CreatePost(ctx context.Context, raw string) error {
	meta, _, err := ParseDocument(raw)
	if err != nil {
		return err
	}
	if missing := meta.missingRequired(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	name := NewPostFileName()
	if _, err := r.store.WriteFile(ctx, path.Join(postsDir, name), []byte(raw), "Add post: "+meta.Title, ""); err != nil {
		return err
	}
	r.cache.Invalidate()
	return nil
}

// UpdatePost re-reads the document for its current revision token,
// re-serializes meta+body deterministically, and writes with that token as
// the precondition. A remote change between read and write surfaces as
// ErrConflict; the caller re-reads and retries, the repository does not.
func (r *Repository) UpdatePost(ctx context.Context, slug, body string, meta Meta) error {
	if missing := meta.missingRequired(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	p := path.Join(postsDir, slug+postExt)
	f, err := r.store.ReadFile(ctx, p)
	if err != nil {
		return err
	}
	raw := meta.Serialize(body)
	if _, err := r.store.WriteFile(ctx, p, []byte(raw), "Update post: "+slug, f.SHA); err != nil {
		return err
	}
	r.cache.Invalidate()
	return nil
}

// DeletePost removes the document and invalidates the cache.
func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	p := path.Join(postsDir, slug+postExt)
	f, err := r.store.ReadFile(ctx, p)
	if err != nil {
		return err
	}
	if err := r.store.DeleteFile(ctx, p, f.SHA, "Delete post: "+slug); err != nil {
		return err
	}
	r.cache.Invalidate()
	return nil
}

// GetAsset fetches one asset by its name under the assets root.
func (r *Repository) GetAsset(ctx context.Context, name string) (AssetFile, error) {
	f, err := r.store.ReadFile(ctx, path.Join(assetsDir, name))
	if err != nil {
		return AssetFile{}, err
	}
	return AssetFile{
		Data:        f.Content,
		ContentType: contentTypeForName(name),
		SHA:         f.SHA,
	}, nil
}

// UploadAsset writes data under the assets root and returns the access
// path. Name uniqueness is the caller's job (see NewAssetFileName); the
// posts cache is untouched because assets are not part of it.
func (r *Repository) UploadAsset(ctx context.Context, name string, data []byte) (string, error) {
	if _, err := r.store.WriteFile(ctx, path.Join(assetsDir, name), data, "Upload asset: "+name, ""); err != nil {
		return "", err
	}
	return "/api/assets/" + name, nil
}

// DeleteAsset removes one asset by name. No cache invalidation needed.
func (r *Repository) DeleteAsset(ctx context.Context, name string) error {
	p := path.Join(assetsDir, name)
	f, err := r.store.ReadFile(ctx, p)
	if err != nil {
		return err
	}
	return r.store.DeleteFile(ctx, p, f.SHA, "Delete asset: "+name)
}

// AssetGroups lists every asset grouped by the post that references it, or
// under "unused". Usage is a textual scan of each post's raw body for the
// asset file name, recomputed on every call and never stored.
func (r *Repository) AssetGroups(ctx context.Context) (map[string][]Asset, error) {
	entries, err := r.store.ReadDir(ctx, assetsDir)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return map[string][]Asset{}, nil
		}
		return nil, err
	}
	posts, err := r.ListPosts(ctx, true)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]Asset)
	for _, e := range entries {
		if e.Type != "file" {
			continue
		}
		a := Asset{Name: e.Name, Path: e.Path, URL: "/api/assets/" + e.Name}
		group := unusedGroup
		for _, p := range posts {
			if strings.Contains(p.Raw, e.Name) {
				a.PostSlug = p.Slug
				a.PostTitle = p.Title
				group = p.Title
				break
			}
		}
		groups[group] = append(groups[group], a)
	}
	return groups, nil
}

// CacheInfo reports cache state for the admin debug endpoint. It lists
// posts through the normal read path, so on a cold cache it also warms it.
func (r *Repository) CacheInfo(ctx context.Context) (CacheInfo, error) {
	posts, err := r.ListPosts(ctx, true)
	if err != nil {
		return CacheInfo{}, err
	}
	published := 0
	for _, p := range posts {
		if p.Published {
			published++
		}
	}
	return CacheInfo{
		Initialized: r.cache.Initialized(),
		Enabled:     r.cache.Enabled(),
		Posts:       PostCounts{Total: len(posts), Published: published},
		Entries:     r.cache.Snapshot(),
	}, nil
}

// InvalidateCache clears every cached entry. The next read refetches from
// the remote store.
func (r *Repository) InvalidateCache() {
	r.cache.Invalidate()
}

// contentTypeForName derives a content type from the file extension.
func contentTypeForName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
