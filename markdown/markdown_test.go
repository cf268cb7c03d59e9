package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, md string) string {
	t.Helper()
	out, err := Default.RenderContent(md)
	require.NoError(t, err)
	return out
}

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bold", "**bold**", "<strong>bold</strong>"},
		{"bold underscore", "__bold__", "<strong>bold</strong>"},
		{"bold mid sentence", "text **bold** more", "text <strong>bold</strong> more"},
		{"italic", "*italic*", "<em>italic</em>"},
		{"italic underscore", "_italic_", "<em>italic</em>"},
		{"nested", "**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"code", "use `x := 1`", "use <code>x := 1</code>"},
		{"code is not formatted", "`**raw**`", "<code>**raw**</code>"},
		{"escapes html", "<script>", "&lt;script&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInline(tt.in))
		})
	}
}

func TestFormatInline_Links(t *testing.T) {
	got := FormatInline("[docs](https://example.com/some_long_path_name)")
	assert.Contains(t, got, `href="https://example.com/some_long_path_name"`)
	assert.NotContains(t, got, "<em>")

	blank := FormatInline("[out](https://example.com)^")
	assert.Contains(t, blank, `target="_blank"`)
	assert.Contains(t, blank, `rel="noopener noreferrer"`)

	assert.Equal(t, "bad", FormatInline("[bad](javascript:void)"))
}

func TestFormatInline_LinkClass(t *testing.T) {
	r := New(Options{})
	out, err := r.RenderContent("[a](/x)")
	require.NoError(t, err)
	assert.Equal(t, `<p><a href="/x">a</a></p>`, out)
}

func TestSafeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/?a=1&amp;b=2", SafeURL("https://example.com/?a=1&b=2"))
	assert.Equal(t, "/relative", SafeURL("/relative"))
	assert.Equal(t, "#anchor", SafeURL("#anchor"))
	assert.Equal(t, "mailto:a@b.c", SafeURL("mailto:a@b.c"))
	assert.Empty(t, SafeURL("javascript:alert(1)"))
	assert.Empty(t, SafeURL("data:text/html,hi"))
	assert.Empty(t, SafeURL("   "))
}

func TestRender_Blocks(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"paragraph joins lines", "one\ntwo", "<p>one two</p>"},
		{"paragraphs split on blank", "one\n\ntwo", "<p>one</p><p>two</p>"},
		{"headings", "# H1\n### H3", "<h1>H1</h1><h3>H3</h3>"},
		{"rule", "a\n---\nb", "<p>a</p><hr/><p>b</p>"},
		{"list", "- a\n- b", "<ul><li>a</li><li>b</li></ul>"},
		{"ordered list", "1. a\n2. **b**", "<ol><li>a</li><li><strong>b</strong></li></ol>"},
		{"ordered then paragraph", "1. a\n\nafter", "<ol><li>a</li></ol><p>after</p>"},
		{"quote", "> a\n> b", "<blockquote>a b</blockquote>"},
		{"list to paragraph", "- a\ntext", "<ul><li>a</li></ul><p>text</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.in))
		})
	}
}

func TestRender_CodeBlock(t *testing.T) {
	out := render(t, "```go\nfmt.Println(\"<hi>\")\n**x**\n```\nafter")
	assert.True(t, strings.HasPrefix(out, `<div class="code-block-wrapper"><span class="code-lang">go</span>`))
	assert.Contains(t, out, `<code class="language-go">`)
	assert.Contains(t, out, "fmt.Println(&#34;&lt;hi&gt;&#34;)\n**x**\n</code></pre></div>")
	assert.True(t, strings.HasSuffix(out, "<p>after</p>"))

	plain := render(t, "```\ncode\n```")
	assert.Equal(t, "<pre class=\"code-block\"><code>code\n</code></pre>", plain)

	unterminated := render(t, "```\nopen")
	assert.Equal(t, "<pre class=\"code-block\"><code>open\n</code></pre>", unterminated)
}

func TestRender_MediaEmbeds(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=abc123", "youtube-nocookie.com/embed/abc123"},
		{"youtube short", "https://youtu.be/xyz", "youtube-nocookie.com/embed/xyz"},
		{"vimeo", "https://vimeo.com/76979871", "player.vimeo.com/video/76979871"},
		{"video file", "https://cdn.example.com/clip.MP4", `<video controls preload="metadata" src="https://cdn.example.com/clip.MP4">`},
		{"audio file", "https://cdn.example.com/ep1.mp3", "<audio controls"},
		{"image file", "https://cdn.example.com/cat.webp?w=200", `<img loading="lazy" decoding="async" alt="" src="https://cdn.example.com/cat.webp?w=200"/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, "intro\n"+tt.in+"\noutro")
			assert.Contains(t, out, tt.want)
			assert.True(t, strings.HasPrefix(out, "<p>intro</p>"))
			assert.True(t, strings.HasSuffix(out, "<p>outro</p>"))
		})
	}
}

func TestRender_NonMediaURLStaysText(t *testing.T) {
	assert.Equal(t, "<p>https://example.com/page</p>", render(t, "https://example.com/page"))
	// Only standalone lines are embedded.
	out := render(t, "see https://youtu.be/xyz now")
	assert.NotContains(t, out, "<iframe")

	noEmbed := New(Options{})
	out, err := noEmbed.RenderContent("https://youtu.be/xyz")
	require.NoError(t, err)
	assert.NotContains(t, out, "<iframe")
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown("# Hi\n\n**there**").Render(context.Background(), &buf))
	assert.Equal(t, "<h1>Hi</h1><p><strong>there</strong></p>", buf.String())
}

func TestApplyOutsideTags(t *testing.T) {
	upper := strings.ToUpper
	assert.Equal(t, `A<a href="x_y">B</a>C`, ApplyOutsideTags(`a<a href="x_y">b</a>c`, upper))
	assert.Equal(t, "AB<unclosed", ApplyOutsideTags("ab<unclosed", upper))
}
