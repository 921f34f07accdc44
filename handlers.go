package gitpress

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrMalformed), errors.As(err, &ve):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// apiError renders err as a JSON error response. Internal errors are
// logged but their details are not leaked to the client.
func apiError(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		c.Logger().Errorf("internal error: %v", err)
		msg = "internal server error"
	}
	return c.JSON(code, map[string]string{"error": msg})
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Repo.ListPosts(ctx, false)
	if err != nil {
		return apiError(c, err)
	}
	if a.Views.Home != nil {
		topics, err := a.Repo.ListTopics(ctx)
		if err != nil {
			return apiError(c, err)
		}
		return Render(c, a.Views.Home(posts, topics, a.Config.URL))
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handlePostPage(c echo.Context) error {
	post, err := a.Repo.GetPost(c.Request().Context(), c.Param("slug"), false)
	if err != nil {
		if errors.Is(err, ErrNotFound) && a.Views.NotFound != nil {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return apiError(c, err)
	}
	if a.Views.Post != nil {
		return Render(c, a.Views.Post(post, a.Config.URL))
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleTopicPage(c echo.Context) error {
	topic := c.Param("topic")
	posts, err := a.Repo.ListPostsByTopic(c.Request().Context(), topic)
	if err != nil {
		return apiError(c, err)
	}
	posts = publishedOnly(posts)
	if a.Views.Topic != nil {
		return Render(c, a.Views.Topic(topic, posts, a.Config.URL))
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Repo.ListPosts(c.Request().Context(), false)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Repo.GetPost(c.Request().Context(), c.Param("slug"), false)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleListTopics(c echo.Context) error {
	topics, err := a.Repo.ListTopics(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	if topics == nil {
		topics = []string{}
	}
	return c.JSON(http.StatusOK, topics)
}

// handleTopicPosts serves the published posts of one topic. The repository
// returns the unpublished-inclusive superset; the published filter is
// applied here, at the API boundary.
func (a *App) handleTopicPosts(c echo.Context) error {
	posts, err := a.Repo.ListPostsByTopic(c.Request().Context(), c.Param("topic"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, publishedOnly(posts))
}

func (a *App) handleAsset(c echo.Context) error {
	asset, err := a.Repo.GetAsset(c.Request().Context(), c.Param("name"))
	if err != nil {
		return apiError(c, err)
	}
	return c.Blob(http.StatusOK, asset.ContentType, asset.Data)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Repo.ListPosts(c.Request().Context(), false)
	if err != nil {
		return apiError(c, err)
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Repo.ListPosts(c.Request().Context(), false)
	if err != nil {
		return apiError(c, err)
	}
	return a.renderSitemap(c, posts)
}

func publishedOnly(posts []Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Published {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && a.Views.NotFound != nil {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if a.Views.ServerError != nil {
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
