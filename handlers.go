package labelpress

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/labelpress/content"
	"github.com/eringen/labelpress/views"
)

func (a *App) handleIndex(c echo.Context) error {
	page, err := pageNumber(c.QueryParam("page"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	posts, err := a.Store.PublicPage(ctx, page, a.Config.PageSize)
	if err != nil {
		return err
	}
	labels, err := a.Store.ListLabels(ctx)
	if err != nil {
		return err
	}

	site := a.site()
	return Render(c, a.Views.Index(views.ListData{
		Site: site,
		Meta: views.PageMeta{
			Description: site.Description,
			URL:         views.AbsURL(site.URL),
			OGType:      "website",
			JSONLD:      views.WebsiteJSONLD(site),
		},
		Page:   posts,
		Labels: labels,
	}))
}

func (a *App) handleLabelIndex(c echo.Context) error {
	text, err := labelParam(c)
	if err != nil {
		return err
	}
	page, err := pageNumber(c.Param("page"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	label, posts, err := a.Store.LabelPage(ctx, text, page, a.Config.PageSize)
	if err != nil {
		return err
	}
	labels, err := a.Store.ListLabels(ctx)
	if err != nil {
		return err
	}

	site := a.site()
	return Render(c, a.Views.Index(views.ListData{
		Site: site,
		Meta: views.PageMeta{
			Title:       label.Text,
			Description: fmt.Sprintf("Posts labelled %s", label.Text),
			URL:         views.AbsLabelURL(site.URL, label.Text, page),
		},
		Page:   posts,
		Label:  label,
		Labels: labels,
	}))
}

// handlePost shows a single post. Hidden and trashed posts are not found for
// readers.
func (a *App) handlePost(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return content.NotFoundf("post %q", c.Param("id"))
	}
	ctx := c.Request().Context()
	post, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !post.Public() {
		return content.NotFoundf("post %d", id)
	}
	labels, err := a.Store.LabelsOfPost(ctx, id)
	if err != nil {
		return err
	}
	author, err := a.Authors.Author(ctx, post)
	if err != nil {
		return err
	}
	body, err := a.renderBody(post)
	if err != nil {
		return err
	}

	site := a.site()
	return Render(c, a.Views.Post(views.PostData{
		Site: site,
		Meta: views.PageMeta{
			Title:       post.Title,
			Description: post.Brief(),
			URL:         views.AbsURL(site.URL, views.PostURL(post.ID)),
			OGType:      "article",
			JSONLD:      views.BlogPostingJSONLD(site, *post, author, labels),
		},
		Post:   *post,
		Author: author,
		Labels: labels,
		HTML:   body,
	}))
}

func (a *App) handleLabels(c echo.Context) error {
	labels, err := a.Store.ListLabels(c.Request().Context())
	if err != nil {
		return err
	}
	site := a.site()
	return Render(c, a.Views.Labels(views.LabelsData{
		Site:   site,
		Meta:   views.PageMeta{Title: "Labels", URL: views.AbsURL(site.URL, "labels")},
		Labels: labels,
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Store.ListPublicPosts(ctx, 1, sitemapLimit)
	if err != nil {
		return err
	}
	labels, err := a.Store.ListLabels(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, labels)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.ListPublicPosts(c.Request().Context(), 1, feedLimit)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + views.AbsURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

// labelParam returns the decoded label path segment. Echo routes on RawPath,
// leaving params escaped, only when the path needs it (e.g. "c%2Fc++");
// otherwise the param is already decoded and must not be unescaped again.
func labelParam(c echo.Context) (string, error) {
	raw := c.Param("label")
	if c.Request().URL.RawPath == "" {
		return raw, nil
	}
	text, err := url.PathUnescape(raw)
	if err != nil {
		return "", content.InvalidArgumentf("malformed label %q", raw)
	}
	return text, nil
}

// pageNumber parses a 1-indexed page number. Empty means the first page.
func pageNumber(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, content.InvalidArgumentf("page must be a number, got %q", raw)
	}
	return n, nil
}

// wantsJSON reports whether the error response should be JSON rather than
// an HTML page. Every API route is a POST.
func wantsJSON(c echo.Context) bool {
	r := c.Request()
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := toAPIError(err)
	status := apiErr.status
	if status >= 500 {
		a.Logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"error", err,
		)
	}
	if content.CodeOf(err).Retryable() || status == http.StatusServiceUnavailable {
		c.Response().Header().Set("Retry-After", "1")
	}

	var werr error
	switch {
	case wantsJSON(c):
		werr = c.JSON(status, errorEnvelope{Error: apiErr})
	case c.Request().Method == http.MethodHead:
		werr = c.NoContent(status)
	case status == http.StatusNotFound:
		werr = RenderStatus(c, status, a.Views.NotFound(a.site()))
	case status >= 500:
		werr = RenderStatus(c, status, a.Views.ServerError(a.site()))
	default:
		werr = c.String(status, apiErr.Message)
	}
	if werr != nil {
		a.Logger.Error("write error response", "error", werr)
	}
}

type apiError struct {
	Code    content.Code `json:"code"`
	Message string       `json:"message"`
	Details any          `json:"details,omitempty"`
	status  int
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// codeRateLimited is reported for requests rejected by the write limiter.
const codeRateLimited content.Code = "RATE_LIMITED"

func toAPIError(err error) apiError {
	var ce *content.Error
	if errors.As(err, &ce) {
		out := apiError{Code: ce.Code, Message: ce.Message, Details: ce.Details, status: ce.HTTPStatus()}
		if ce.Code == content.CodeInternal {
			out.Message = content.ErrInternal.Message
			out.Details = nil
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		out := apiError{Message: fmt.Sprint(he.Message), status: he.Code}
		switch {
		case he.Code == http.StatusNotFound:
			out.Code = content.CodeNotFound
		case he.Code == http.StatusTooManyRequests:
			out.Code = codeRateLimited
		case he.Code == http.StatusServiceUnavailable:
			out.Code = content.CodeStorageUnavailable
		case he.Code >= 400 && he.Code < 500:
			out.Code = content.CodeInvalidArgument
		default:
			out.Code = content.CodeInternal
		}
		return out
	}

	return apiError{
		Code:    content.CodeInternal,
		Message: content.ErrInternal.Message,
		status:  http.StatusInternalServerError,
	}
}
