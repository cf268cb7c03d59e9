package views

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/eringen/labelpress/content"
)

// Site holds site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}

// ListData is one page of posts, either the public index or a label index.
type ListData struct {
	Site   Site
	Meta   PageMeta
	Page   content.Page[content.Post]
	Label  *content.Label // nil on the public index
	Labels []content.Label
}

// PageURL returns the path of page n of this listing.
func (d ListData) PageURL(n int) string {
	if d.Label != nil {
		return LabelURL(d.Label.Text, n)
	}
	if n <= 1 {
		return "/"
	}
	return "/blogs?page=" + strconv.Itoa(n)
}

// PostData is a single post with everything the detail page shows.
type PostData struct {
	Site   Site
	Meta   PageMeta
	Post   content.Post
	Author *content.User
	Labels []content.Label
	HTML   template.HTML
}

// LabelsData lists every label.
type LabelsData struct {
	Site   Site
	Meta   PageMeta
	Labels []content.Label
}

// PostURL is the reader path of a post.
func PostURL(id int64) string {
	return "/blogs/" + strconv.FormatInt(id, 10)
}

// LabelURL is the reader path of page n of a label index.
func LabelURL(text string, n int) string {
	return "/" + url.PathEscape(text) + "/posts/" + strconv.Itoa(n)
}

// AbsLabelURL is LabelURL made absolute against base.
func AbsLabelURL(base, text string, n int) string {
	return strings.TrimSuffix(base, "/") + LabelURL(text, n)
}
