package labelpress

import (
	"encoding/xml"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/labelpress/content"
	"github.com/eringen/labelpress/views"
)

// sitemapLimit caps post entries; the sitemap protocol allows 50,000 URLs.
const sitemapLimit = 45000

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap lists the index, the labels page, every published post and
// the first page of every label.
func (a *App) renderSitemap(c echo.Context, posts []content.Post, labels []content.Label) error {
	base := a.Config.URL
	urls := make([]sitemapURL, 0, len(posts)+len(labels)+2)
	index := sitemapURL{Loc: views.AbsURL(base)}
	if len(posts) > 0 {
		index.LastMod = posts[0].Timestamp.Format("2006-01-02")
	}
	urls = append(urls, index, sitemapURL{Loc: views.AbsURL(base, "labels")})

	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     views.AbsURL(base, "blogs", strconv.FormatInt(p.ID, 10)),
			LastMod: p.Timestamp.Format("2006-01-02"),
		})
	}
	for _, l := range labels {
		urls = append(urls, sitemapURL{Loc: views.AbsLabelURL(base, l.Text, 1)})
	}

	return writeXML(c, "application/xml; charset=utf-8", sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}
