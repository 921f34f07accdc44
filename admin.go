package gitpress

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Password string `json:"password" form:"password"`
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many login attempts"})
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid password"})
	}
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleAuthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"authenticated": IsAdmin(c)})
}

// Admin reads always include unpublished posts.

func (a *App) handleAdminListPosts(c echo.Context) error {
	posts, err := a.Repo.ListPosts(c.Request().Context(), true)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleAdminGetPost(c echo.Context) error {
	post, err := a.Repo.GetPost(c.Request().Context(), c.Param("slug"), true)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

type createPostRequest struct {
	Content string `json:"content"`
}

func (a *App) handleAdminCreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := a.Repo.CreatePost(c.Request().Context(), req.Content); err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type updatePostRequest struct {
	Content     string `json:"content"`
	FrontMatter Meta   `json:"frontmatter"`
}

func (a *App) handleAdminUpdatePost(c echo.Context) error {
	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := a.Repo.UpdatePost(c.Request().Context(), c.Param("slug"), req.Content, req.FrontMatter); err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	if err := a.Repo.DeletePost(c.Request().Context(), c.Param("slug")); err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleAdminAssets(c echo.Context) error {
	groups, err := a.Repo.AssetGroups(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}

func (a *App) handleAdminDeleteAsset(c echo.Context) error {
	if err := a.Repo.DeleteAsset(c.Request().Context(), c.Param("name")); err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (a *App) handleAdminCacheInfo(c echo.Context) error {
	info, err := a.Repo.CacheInfo(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (a *App) handleAdminCacheInvalidate(c echo.Context) error {
	a.Repo.InvalidateCache()
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
