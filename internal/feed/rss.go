// Package feed строит RSS-ленту последних постов и XML-карту сайта.
package feed

import (
	"strings"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/GoArmGo/BlogApp/internal/markup"
	"github.com/gorilla/feeds"
)

const (
	FeedTitle       = "My blog"
	FeedDescription = "New posts of my blog."
	summaryWords    = 30
)

// RSS рендерит ленту RSS 2.0. baseURL — схема и хост сайта без завершающего '/',
// posts уже отсортированы от новых к старым.
func RSS(baseURL string, posts []domain.Post) (string, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	f := &feeds.Feed{
		Title:       FeedTitle,
		Link:        &feeds.Link{Href: baseURL + "/blog/"},
		Description: FeedDescription,
	}
	if len(posts) > 0 {
		f.Updated = posts[0].Publish.UTC()
	} else {
		f.Updated = time.Now().UTC()
	}

	f.Items = make([]*feeds.Item, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		link := baseURL + p.AbsoluteURL()
		f.Items = append(f.Items, &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: markup.Summary(p.Body, summaryWords),
			Created:     p.Publish.UTC(),
		})
	}
	return f.ToRss()
}
