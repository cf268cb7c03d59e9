package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/labelpress/content"
)

// AbsURL joins path segments onto a base URL.
func AbsURL(base string, segments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(append([]string{u.Path}, segments...)...)
	if u.Path == "" || u.Path == "." {
		u.Path = "/"
	}
	return u.String()
}

// FormatDate renders t the way post bylines show it.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// LabelTexts returns the text of each label.
func LabelTexts(labels []content.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Text
	}
	return out
}

// LabelClass returns CSS classes for a label pill, with active variant.
func LabelClass(active bool) string {
	base := "inline-flex items-center rounded border px-2.5 py-1 text-[11px] font-semibold uppercase tracking-[0.12em]"
	if active {
		base += " bg-ink text-white"
	}
	return base
}

// WebsiteJSONLD produces a Schema.org WebSite JSON-LD block.
func WebsiteJSONLD(site Site) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      AbsURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{"@type": "Person", "name": site.Author}
	}
	return marshalLD(data)
}

// BlogPostingJSONLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJSONLD(site Site, post content.Post, author *content.User, labels []content.Label) string {
	postURL := AbsURL(site.URL, "blogs", strconv.FormatInt(post.ID, 10))
	data := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "BlogPosting",
		"headline":         post.Title,
		"description":      post.Brief(),
		"datePublished":    post.Timestamp.Format(time.RFC3339),
		"url":              postURL,
		"publisher":        map[string]string{"@type": "Organization", "name": site.Name},
		"mainEntityOfPage": map[string]string{"@type": "WebPage", "@id": postURL},
	}
	if author != nil {
		data["author"] = map[string]string{"@type": "Person", "name": author.Fullname}
	}
	if len(labels) > 0 {
		data["keywords"] = strings.Join(LabelTexts(labels), ", ")
	}
	return marshalLD(data)
}

func marshalLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
