// Package views holds the default pages. Each page is a templ.Component so
// callers can swap any of them for their own templ templates.
package views

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/labelpress/content"
)

const layout = `{{define "layout"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Meta.Title}}{{.Meta.Title}} | {{end}}{{.Site.Name}}</title>
{{with .Meta.Description}}<meta name="description" content="{{.}}">{{end}}
{{with .Meta.URL}}<link rel="canonical" href="{{.}}"><meta property="og:url" content="{{.}}">{{end}}
<meta property="og:type" content="{{or .Meta.OGType "website"}}">
<meta property="og:site_name" content="{{.Site.Name}}">
<link rel="alternate" type="application/rss+xml" title="{{.Site.Name}}" href="/feed.xml">
{{with .Meta.JSONLD}}<script type="application/ld+json">{{ld .}}</script>{{end}}
</head>
<body>
<header><a href="/">{{.Site.Name}}</a> <nav><a href="/labels">Labels</a></nav></header>
<main>{{template "main" .}}</main>
</body>
</html>{{end}}`

const listPage = `{{define "main"}}
{{with .Label}}<h1>Posts labelled <span class="{{labelClass true}}">{{.Text}}</span></h1>{{end}}
{{range .Page.Items}}<article>
<h2><a href="{{postURL .ID}}">{{.Title}}</a></h2>
<time datetime="{{.Timestamp.Format "2006-01-02"}}">{{date .Timestamp}}</time>
<p>{{.Brief}}</p>
</article>
{{else}}<p>No posts yet.</p>
{{end}}
{{if gt .Page.TotalPages 1}}<nav class="pager">
{{if .Page.HasPrev}}<a rel="prev" href="{{.PageURL (dec .Page.Page)}}">Newer</a>{{end}}
<span>Page {{.Page.Page}} of {{.Page.TotalPages}}</span>
{{if .Page.HasNext}}<a rel="next" href="{{.PageURL (inc .Page.Page)}}">Older</a>{{end}}
</nav>{{end}}
{{if .Labels}}<aside><ul>{{$active := .Label}}{{range .Labels}}
<li><a class="{{labelClass (isActive $active .ID)}}" href="{{labelURL .Text 1}}">{{.Text}}</a></li>{{end}}
</ul></aside>{{end}}
{{end}}`

const postPage = `{{define "main"}}<article>
<h1>{{.Post.Title}}</h1>
<p><time datetime="{{.Post.Timestamp.Format "2006-01-02"}}">{{date .Post.Timestamp}}</time>{{with .Author}} by {{.Fullname}}{{end}}</p>
{{if .Labels}}<ul class="labels">{{range .Labels}}<li><a class="{{labelClass false}}" href="{{labelURL .Text 1}}">{{.Text}}</a></li>{{end}}</ul>{{end}}
<div class="prose">{{.HTML}}</div>
</article>{{end}}`

const labelsPage = `{{define "main"}}<h1>Labels</h1>
<ul>{{range .Labels}}<li><a class="{{labelClass false}}" href="{{labelURL .Text 1}}">{{.Text}}</a></li>{{else}}<li>No labels yet.</li>{{end}}</ul>
{{end}}`

const errorPage = `{{define "main"}}<h1>{{.Meta.Title}}</h1><p>{{.Meta.Description}}</p><p><a href="/">Back home</a></p>{{end}}`

var funcs = template.FuncMap{
	"ld":         func(s string) template.JS { return template.JS(s) },
	"date":       FormatDate,
	"postURL":    PostURL,
	"labelURL":   LabelURL,
	"labelClass": LabelClass,
	"isActive":   func(l *content.Label, id int64) bool { return l != nil && l.ID == id },
	"inc":        func(n int) int { return n + 1 },
	"dec":        func(n int) int { return n - 1 },
}

func page(body string) *template.Template {
	return template.Must(template.Must(template.New("layout").Funcs(funcs).Parse(layout)).Parse(body))
}

var (
	listTmpl   = page(listPage)
	postTmpl   = page(postPage)
	labelsTmpl = page(labelsPage)
	errorTmpl  = page(errorPage)
)

func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, "layout", data)
	})
}

// Index renders the public index or a label index.
func Index(d ListData) templ.Component {
	return component(listTmpl, d)
}

// Post renders a single post with its rendered body.
func Post(d PostData) templ.Component {
	return component(postTmpl, d)
}

// Labels renders the list of all labels.
func Labels(d LabelsData) templ.Component {
	return component(labelsTmpl, d)
}

type errorData struct {
	Site Site
	Meta PageMeta
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return component(errorTmpl, errorData{Site: site, Meta: PageMeta{
		Title:       "Not found",
		Description: "The page you are looking for does not exist.",
	}})
}

// ServerError renders the 500 page. It shows no error detail.
func ServerError(site Site) templ.Component {
	return component(errorTmpl, errorData{Site: site, Meta: PageMeta{
		Title:       "Something went wrong",
		Description: "Please try again in a moment.",
	}})
}
