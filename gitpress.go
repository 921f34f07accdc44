// Package gitpress is a blog content platform whose system of record is a
// Git repository hosted on GitHub. Posts are Markdown files with front
// matter under content/posts/, image assets live under content/assets/,
// and an in-process cache fronts the Contents API so reads stay cheap.
// Every admin mutation commits to the repository and invalidates the cache
// before returning.
//
// Page templates are optional: users may provide templ components via the
// ViewFuncs struct, and any handler without a view answers JSON.
package gitpress

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds user-provided templ components for the HTML pages. Any
// nil field makes the corresponding route serve JSON instead.
type ViewFuncs struct {
	Home        func(posts []Post, topics []string, siteURL string) templ.Component
	Post        func(post Post, siteURL string) templ.Component
	Topic       func(topic string, posts []Post, siteURL string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central gitpress application. It wires together the store
// client, cache, repository, handlers, and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  ContentStore
	Cache  *Cache
	Repo   *Repository
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
}

// New creates a gitpress App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// setup initializes the store, cache, repository, middleware, and routes.
func (a *App) setup() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("gitpress: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("gitpress: SessionSecret is required")
	}
	if a.Store == nil {
		if a.Config.GitHubOwner == "" || a.Config.GitHubRepo == "" {
			return fmt.Errorf("gitpress: GitHubOwner and GitHubRepo are required")
		}
		a.Store = NewGitHubStore(a.Config.GitHubOwner, a.Config.GitHubRepo, a.Config.GitHubBranch, a.Config.GitHubToken)
	}

	a.Cache = NewCache(!a.Config.CacheDisabled)
	a.Repo = NewRepository(a.Store, a.Cache)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the application and starts the server. It blocks until
// the server stops.
func (a *App) Start() error {
	if err := a.setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/posts/:slug", a.handlePostPage)
	e.GET("/topics/:topic", a.handleTopicPage)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public API
	e.GET("/api/posts", a.handleListPosts)
	e.GET("/api/posts/:slug", a.handleGetPost)
	e.GET("/api/topics", a.handleListTopics)
	e.GET("/api/topics/:topic", a.handleTopicPosts)
	e.GET("/api/assets/:name", a.handleAsset)

	// Auth
	e.POST("/api/auth/login", a.handleLogin)
	e.POST("/api/auth/logout", a.handleLogout)
	e.GET("/api/auth/check", a.handleAuthCheck)

	// Admin API, session-gated
	admin := e.Group("/api/admin", a.requireAdmin)
	admin.GET("/posts", a.handleAdminListPosts)
	admin.GET("/posts/:slug", a.handleAdminGetPost)
	admin.POST("/posts", a.handleAdminCreatePost)
	admin.PUT("/posts/:slug", a.handleAdminUpdatePost)
	admin.DELETE("/posts/:slug", a.handleAdminDeletePost)
	admin.GET("/assets", a.handleAdminAssets)
	admin.DELETE("/assets/:name", a.handleAdminDeleteAsset)
	admin.POST("/upload", a.handleAdminUpload)
	admin.GET("/cache", a.handleAdminCacheInfo)
	admin.DELETE("/cache", a.handleAdminCacheInvalidate)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("gitpress: required environment variable %s is not set", key)
	}
	return v
}
