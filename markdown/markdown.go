// Package markdown renders post content to HTML. A line holding nothing but a
// media URL (YouTube, Vimeo, video, audio or image file) becomes an embedded
// player or image instead of a link.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reImg              = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedList      = regexp.MustCompile(`^(\d+)\.\s`)
	reHeading          = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	reBareURL          = regexp.MustCompile(`^https?://\S+$`)
	reVimeoID          = regexp.MustCompile(`^/(\d+)`)
)

var (
	videoExts = map[string]bool{".mp4": true, ".webm": true, ".ogv": true, ".mov": true}
	audioExts = map[string]bool{".mp3": true, ".ogg": true, ".wav": true, ".m4a": true}
	imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true}
)

// Options tunes the generated HTML.
type Options struct {
	// EmbedMedia turns bare media URLs into players and images.
	EmbedMedia bool
	// LinkClass is set as the class attribute of every <a>.
	LinkClass string
}

// Renderer converts markdown to HTML. It is stateless and safe for
// concurrent use.
type Renderer struct {
	opts Options
}

// New returns a Renderer with the given options.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Default embeds media and styles links the way the bundled views expect.
var Default = New(Options{
	EmbedMedia: true,
	LinkClass:  "underline decoration-2 underline-offset-4",
})

// RenderContent returns the HTML for raw.
func (r *Renderer) RenderContent(raw string) (string, error) {
	var buf bytes.Buffer
	r.Render(&buf, raw)
	return buf.String(), nil
}

// Component wraps the rendered HTML of raw as a templ component.
func (r *Renderer) Component(raw string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		r.Render(&buf, raw)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Markdown renders content with the Default renderer as a templ component.
func Markdown(content string) templ.Component {
	return Default.Component(content)
}

type blockKind int

const (
	blockNone blockKind = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockCode
)

// writer tracks which block element is currently open.
type writer struct {
	r     *Renderer
	buf   *bytes.Buffer
	open  blockKind
	codeW bool // code block has a language wrapper div
}

func (w *writer) close() {
	switch w.open {
	case blockPara:
		w.buf.WriteString("</p>")
	case blockList:
		w.buf.WriteString("</ul>")
	case blockOrdered:
		w.buf.WriteString("</ol>")
	case blockQuote:
		w.buf.WriteString("</blockquote>")
	case blockCode:
		w.buf.WriteString("</code></pre>")
		if w.codeW {
			w.buf.WriteString("</div>")
			w.codeW = false
		}
	}
	w.open = blockNone
}

// enter closes whatever is open unless it is already kind, then opens kind.
// It reports whether a new element was started.
func (w *writer) enter(kind blockKind, tag string) bool {
	if w.open == kind {
		return false
	}
	w.close()
	w.buf.WriteString(tag)
	w.open = kind
	return true
}

// Render writes the HTML representation of md to buf.
func (r *Renderer) Render(buf *bytes.Buffer, md string) {
	w := &writer{r: r, buf: buf}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "```") {
			if w.open == blockCode {
				w.close()
				continue
			}
			w.close()
			if lang := html.EscapeString(strings.TrimSpace(line[3:])); lang != "" {
				buf.WriteString(`<div class="code-block-wrapper"><span class="code-lang">` + lang + `</span>`)
				buf.WriteString(`<pre class="code-block"><code class="language-` + lang + `">`)
				w.codeW = true
			} else {
				buf.WriteString(`<pre class="code-block"><code>`)
			}
			w.open = blockCode
			continue
		}
		if w.open == blockCode {
			buf.WriteString(html.EscapeString(line))
			buf.WriteByte('\n')
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			w.close()
			continue
		}

		if r.opts.EmbedMedia && reBareURL.MatchString(trimmed) {
			if embed := r.embed(trimmed); embed != "" {
				w.close()
				buf.WriteString(embed)
				continue
			}
		}

		switch {
		case strings.HasPrefix(trimmed, "---"):
			w.close()
			buf.WriteString("<hr/>")
		case reHeading.MatchString(trimmed):
			w.close()
			m := reHeading.FindStringSubmatch(trimmed)
			level := strconv.Itoa(len(m[1]))
			buf.WriteString("<h" + level + ">" + r.inline(m[2]) + "</h" + level + ">")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			w.enter(blockList, "<ul>")
			buf.WriteString("<li>" + r.inline(strings.TrimSpace(trimmed[2:])) + "</li>")
		case reOrderedList.MatchString(trimmed):
			w.enter(blockOrdered, "<ol>")
			buf.WriteString("<li>" + r.inline(strings.TrimSpace(reOrderedList.ReplaceAllString(trimmed, ""))) + "</li>")
		case strings.HasPrefix(trimmed, ">"):
			if !w.enter(blockQuote, "<blockquote>") {
				buf.WriteByte(' ')
			}
			buf.WriteString(r.inline(strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))))
		default:
			if !w.enter(blockPara, "<p>") {
				buf.WriteByte(' ')
			}
			buf.WriteString(r.inline(trimmed))
		}
	}
	w.close()
}

// embed returns player or image markup for a media URL, or "" if raw is not
// a recognised media link.
func (r *Renderer) embed(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	src := html.EscapeString(raw)

	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return youtubeFrame(id)
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return youtubeFrame(id)
		}
	case "vimeo.com":
		if m := reVimeoID.FindStringSubmatch(u.Path); m != nil {
			return `<div class="media media-video"><iframe src="https://player.vimeo.com/video/` + m[1] +
				`" allow="fullscreen; picture-in-picture" allowfullscreen loading="lazy"></iframe></div>`
		}
	}

	ext := strings.ToLower(path.Ext(u.Path))
	switch {
	case videoExts[ext]:
		return `<div class="media media-video"><video controls preload="metadata" src="` + src + `"></video></div>`
	case audioExts[ext]:
		return `<div class="media media-audio"><audio controls preload="metadata" src="` + src + `"></audio></div>`
	case imageExts[ext]:
		return `<figure class="media media-image"><img loading="lazy" decoding="async" alt="" src="` + src + `"/></figure>`
	}
	return ""
}

func youtubeFrame(id string) string {
	return `<div class="media media-video"><iframe src="https://www.youtube-nocookie.com/embed/` +
		url.PathEscape(id) + `" allow="encrypted-media; picture-in-picture" allowfullscreen loading="lazy"></iframe></div>`
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline applies inline formatting (code, images, links, bold, italic)
// to s with the Default renderer.
func FormatInline(s string) string {
	return Default.inline(s)
}

func (r *Renderer) inline(s string) string {
	escaped := html.EscapeString(s)

	// Inline code goes out first so nothing inside backticks is formatted.
	var code []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		inner := reInlineCode.FindStringSubmatch(m)[1]
		code = append(code, "<code>"+inner+"</code>")
		return "\x00IC" + strconv.Itoa(len(code)-1) + "\x00"
	})

	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		return `<img loading="lazy" decoding="async" alt="` + match[1] + `" src="` + src + `"/>`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if r.opts.LinkClass != "" {
			attrs = ` class="` + html.EscapeString(r.opts.LinkClass) + `"`
		}
		if match[3] == "^" {
			attrs += ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})

	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})

	for i, c := range code {
		escaped = strings.Replace(escaped, "\x00IC"+strconv.Itoa(i)+"\x00", c, 1)
	}
	return escaped
}

// SafeURL validates a URL for use in an HTML attribute and returns it
// escaped, or "" if the scheme is not allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
