package gitpress

// SiteConfig holds all configuration for a gitpress site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name

	Addr string // Listen address (default ":3000")

	GitHubOwner  string // Required: owner of the content repository
	GitHubRepo   string // Required: content repository name
	GitHubBranch string // Branch holding the content (default "content")
	GitHubToken  string // Token with contents read/write on the repository

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	// CacheDisabled turns the content cache into a pass-through: every
	// read goes to the remote store. Useful while authoring content.
	CacheDisabled bool
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.GitHubBranch == "" {
		c.GitHubBranch = "content"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore substitutes the remote content store, e.g. a fake in tests or
// a GitHub Enterprise client built with WithBaseURL.
func WithStore(store ContentStore) Option {
	return func(a *App) {
		a.Store = store
	}
}
