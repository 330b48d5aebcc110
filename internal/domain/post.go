package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostStatus — статус публикации поста.
type PostStatus string

const (
	StatusDraft     PostStatus = "DF"
	StatusPublished PostStatus = "PB"
)

// Label возвращает человекочитаемое название статуса.
func (s PostStatus) Label() string {
	switch s {
	case StatusPublished:
		return "Published"
	case StatusDraft:
		return "Draft"
	default:
		return string(s)
	}
}

// Valid сообщает, является ли статус одним из известных.
func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Post представляет пост блога, соответствует таблице posts в бд.
// Slug уникален в пределах даты публикации, а не глобально.
type Post struct {
	ID        uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Title     string     `json:"title" db:"title" gorm:"size:250;not null"`
	Slug      string     `json:"slug" db:"slug" gorm:"size:250;not null"`
	AuthorID  uuid.UUID  `json:"author_id" db:"author_id" gorm:"type:uuid;not null;index"`
	Author    *User      `json:"author,omitempty" db:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Body      string     `json:"body" db:"body" gorm:"type:text;not null"`
	Publish   time.Time  `json:"publish" db:"publish" gorm:"not null;index:idx_posts_publish,sort:desc"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	Status    PostStatus `json:"status" db:"status" gorm:"size:2;not null"`
	Tags      []Tag      `json:"tags,omitempty" db:"-" gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"`

	// Аннотации, заполняемые только запросами со вычисляемыми колонками
	TagCount     int     `json:"-" db:"tag_count" gorm:"column:tag_count;->;-:migration"`
	CommentCount int     `json:"comment_count,omitempty" db:"comment_count" gorm:"column:comment_count;->;-:migration"`
	Rank         float64 `json:"-" db:"rank" gorm:"column:rank;->;-:migration"`
}

func (Post) TableName() string {
	return "posts"
}

// AbsoluteURL возвращает канонический путь поста: /blog/<год>/<месяц>/<день>/<slug>/
func (p *Post) AbsoluteURL() string {
	pub := p.Publish.UTC()
	return fmt.Sprintf("/blog/%d/%d/%d/%s/", pub.Year(), int(pub.Month()), pub.Day(), p.Slug)
}

// IsPublished сообщает, опубликован ли пост.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// TagIDs возвращает идентификаторы тегов поста.
func (p *Post) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// Tag — свободная метка поста, соответствует таблице tags в бд
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" db:"name" gorm:"size:100;not null;uniqueIndex"`
	Slug string    `json:"slug" db:"slug" gorm:"size:100;not null;uniqueIndex"`
}

func (Tag) TableName() string {
	return "tags"
}

// PostSort — порядок сортировки списка постов.
type PostSort string

const (
	SortDateNew   PostSort = "date_new"
	SortDateOld   PostSort = "date_old"
	SortTitleAsc  PostSort = "title_asc"
	SortTitleDesc PostSort = "title_desc"
)

// ParseSort разбирает параметр sort, неизвестные значения дают SortDateNew.
func ParseSort(raw string) PostSort {
	switch s := PostSort(raw); s {
	case SortDateNew, SortDateOld, SortTitleAsc, SortTitleDesc:
		return s
	default:
		return SortDateNew
	}
}

// OrderClause возвращает ORDER BY для сортировки.
func (s PostSort) OrderClause() string {
	switch s {
	case SortDateOld:
		return "posts.publish ASC"
	case SortTitleAsc:
		return "posts.title ASC"
	case SortTitleDesc:
		return "posts.title DESC"
	default:
		return "posts.publish DESC"
	}
}
