package labelpress

import (
	"html/template"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/labelpress/content"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderBody runs the post content through the configured Renderer. The
// renderer owns escaping, so its output is trusted as HTML.
func (a *App) renderBody(p *content.Post) (template.HTML, error) {
	r := a.Renderer
	if r == nil {
		r = content.PlainRenderer
	}
	out, err := r.RenderContent(p.Content)
	if err != nil {
		return "", content.Internalf("render post %d", p.ID).WithCause(err)
	}
	return template.HTML(out), nil
}
