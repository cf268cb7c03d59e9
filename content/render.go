package content

import "html"

// Renderer turns raw post content into HTML. The store never calls it; it is
// applied when a post is serialized for display.
type Renderer interface {
	RenderContent(raw string) (string, error)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(raw string) (string, error)

// RenderContent calls f(raw).
func (f RendererFunc) RenderContent(raw string) (string, error) { return f(raw) }

// PlainRenderer escapes content and keeps line breaks. It is the fallback
// when no markdown renderer is configured.
var PlainRenderer Renderer = RendererFunc(func(raw string) (string, error) {
	return "<pre>" + html.EscapeString(raw) + "</pre>", nil
})
