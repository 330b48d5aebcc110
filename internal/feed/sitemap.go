package feed

import (
	"encoding/xml"
	"strings"

	"github.com/GoArmGo/BlogApp/internal/domain"
)

const (
	sitemapNS         = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapChangeFreq = "weekly"
	sitemapPriority   = "0.9"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap рендерит карту сайта по всем опубликованным постам.
// lastmod берётся из времени последнего изменения поста.
func Sitemap(baseURL string, posts []domain.Post) ([]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	set := urlSet{XMLNS: sitemapNS, URLs: make([]sitemapURL, 0, len(posts))}
	for i := range posts {
		p := &posts[i]
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        baseURL + p.AbsoluteURL(),
			LastMod:    p.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: sitemapChangeFreq,
			Priority:   sitemapPriority,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
