package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortDateNew, ParseSort(""))
	assert.Equal(t, SortDateNew, ParseSort("popular"))
	assert.Equal(t, SortDateOld, ParseSort("date_old"))
	assert.Equal(t, SortTitleAsc, ParseSort("title_asc"))
	assert.Equal(t, SortTitleDesc, ParseSort("title_desc"))
}

func TestPostSort_OrderClause(t *testing.T) {
	assert.Equal(t, "posts.publish DESC", SortDateNew.OrderClause())
	assert.Equal(t, "posts.publish ASC", SortDateOld.OrderClause())
	assert.Equal(t, "posts.title ASC", SortTitleAsc.OrderClause())
	assert.Equal(t, "posts.title DESC", SortTitleDesc.OrderClause())
}

func TestPost_AbsoluteURL(t *testing.T) {
	p := &Post{Slug: "go-generics", Publish: time.Date(2024, time.March, 7, 22, 30, 0, 0, time.UTC)}
	assert.Equal(t, "/blog/2024/3/7/go-generics/", p.AbsoluteURL())
}

func TestPost_TagIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p := &Post{Tags: []Tag{{ID: a, Name: "go"}, {ID: b, Name: "web"}}}
	assert.Equal(t, []uuid.UUID{a, b}, p.TagIDs())
	assert.Empty(t, (&Post{}).TagIDs())
}

func TestPostStatus(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.False(t, PostStatus("XX").Valid())
	assert.Equal(t, "Published", StatusPublished.Label())
	assert.True(t, (&Post{Status: StatusPublished}).IsPublished())
}

func TestImage_AbsoluteURL(t *testing.T) {
	id := uuid.MustParse("8c1f2a4e-0000-4000-8000-000000000001")
	img := &Image{ID: id, Slug: "sunset"}
	assert.Equal(t, "/images/detail/8c1f2a4e-0000-4000-8000-000000000001/sunset/", img.AbsoluteURL())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Anna", (&User{Username: "anna", FirstName: "Anna"}).DisplayName())
	assert.Equal(t, "anna", (&User{Username: "anna"}).DisplayName())
}

func TestDetectImageType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")

	got, err := DetectImageType(png)
	assert.NoError(t, err)
	assert.Equal(t, "image/png", got)

	got, err = DetectImageType(jpeg)
	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", got)

	for name, head := range map[string][]byte{
		"svg with script": []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`),
		"html":            []byte("<!DOCTYPE html><html><script>alert(1)</script></html>"),
		"gif":             []byte("GIF89a\x01\x00\x01\x00"),
		"empty":           nil,
	} {
		_, err := DetectImageType(head)
		assert.ErrorIs(t, err, ErrUnsupportedImage, name)
	}
}
