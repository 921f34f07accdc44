// Command gitpress runs the blog server. All configuration comes from the
// environment (a .env file is loaded when present); templates are not
// bundled, so every page route answers JSON unless an embedding program
// provides views.
package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/eringen/gitpress"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("gitpress: no .env file loaded: %v", err)
	}

	cfg := gitpress.SiteConfig{
		Name:        gitpress.EnvOr("SITE_NAME", "Blog"),
		URL:         gitpress.EnvOr("SITE_URL", "http://localhost:3000"),
		Description: gitpress.EnvOr("SITE_DESCRIPTION", ""),
		Author:      gitpress.EnvOr("SITE_AUTHOR", ""),
		Addr:        gitpress.EnvOr("ADDR", ":3000"),

		GitHubOwner:  gitpress.MustEnv("GITHUB_OWNER"),
		GitHubRepo:   gitpress.MustEnv("GITHUB_REPO"),
		GitHubBranch: gitpress.EnvOr("GITHUB_BRANCH", "content"),
		GitHubToken:  gitpress.MustEnv("GITHUB_TOKEN"),

		AdminPassword: gitpress.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: gitpress.MustEnv("SESSION_SECRET"),
		CookieSecure:  gitpress.EnvOr("COOKIE_SECURE", "") == "true",

		CacheDisabled: isOff(gitpress.EnvOr("GITPRESS_CACHE", "on")),
	}

	app := gitpress.New(cfg, gitpress.ViewFuncs{})
	if err := app.Start(); err != nil {
		log.Fatalf("gitpress: %v", err)
	}
}

func isOff(v string) bool {
	switch strings.ToLower(v) {
	case "off", "false", "0":
		return true
	}
	return false
}
