package forms

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageExtension(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://example.com/photos/cat.JPG", "jpg", true},
		{"https://example.com/photos/cat.jpeg", "jpeg", true},
		{"https://example.com/a/b.png?size=large", "png", true},
		{"https://example.com/anim.gif", "gif", false},
		{"https://example.com/noext", "", false},
		{"https://example.com/archive.tar.png", "png", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageExtension(tt.url), tt.url)
		assert.Equal(t, tt.ok, HasImageExtension(tt.url), tt.url)
	}
}

func TestBind_CommentForm(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var f CommentForm
		errs := Bind(&f, url.Values{
			"name":  {"  Ann "},
			"email": {"ann@example.com"},
			"body":  {"Nice post"},
			"csrf":  {"ignored"},
		})
		assert.False(t, errs.Any())
		assert.Equal(t, "Ann", f.Name)
	})

	t.Run("missing body and bad email", func(t *testing.T) {
		var f CommentForm
		errs := Bind(&f, url.Values{"name": {"Ann"}, "email": {"not-an-email"}})
		assert.Equal(t, "This field is required.", errs.Get("body"))
		assert.Equal(t, "Enter a valid email address.", errs.Get("email"))
		assert.Empty(t, errs.Get("name"))
	})
}

func TestBind_RegistrationForm(t *testing.T) {
	var f RegistrationForm
	errs := Bind(&f, url.Values{
		"username":  {"bad name!"},
		"email":     {"u@example.com"},
		"password":  {"secret-pass"},
		"password2": {"other-pass"},
	})
	assert.Contains(t, errs.Get("username"), "Enter a valid username")
	assert.Equal(t, "The two password fields didn't match.", errs.Get("password2"))
}

func TestBind_ImageCreateForm(t *testing.T) {
	var gif ImageCreateForm
	errs := Bind(&gif, url.Values{"title": {"Cat"}, "url": {"https://example.com/cat.gif"}})
	assert.Equal(t, "The given URL does not match valid image extensions.", errs.Get("url"))

	var png ImageCreateForm
	errs = Bind(&png, url.Values{"title": {"Cat"}, "url": {"https://example.com/cat.png"}})
	assert.False(t, errs.Any())
}

func TestBind_SearchForm(t *testing.T) {
	var empty SearchForm
	assert.Equal(t, "This field is required.", Bind(&empty, url.Values{"query": {"   "}}).Get("query"))

	var long SearchForm
	raw := make([]byte, 65)
	for i := range raw {
		raw[i] = 'a'
	}
	assert.Contains(t, Bind(&long, url.Values{"query": {string(raw)}}).Get("query"), "at most 64")
}

func TestPostForm(t *testing.T) {
	var f PostForm
	errs := Bind(&f, url.Values{
		"title":   {"Hello"},
		"body":    {"text"},
		"status":  {"PB"},
		"publish": {"2024-03-07T09:30"},
		"tags":    {"go, web,, ,Go "},
	})
	require.False(t, errs.Any(), errs)
	assert.Equal(t, time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC), f.PublishTime(time.Now()))
	assert.Equal(t, []string{"go", "web", "Go"}, f.TagNames())

	var bad PostForm
	errs = Bind(&bad, url.Values{"title": {"Hello"}, "body": {"text"}, "status": {"XX"}})
	assert.Equal(t, "Select a valid choice.", errs.Get("status"))

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now, PostForm{}.PublishTime(now))
}

func TestProfileEditForm_BirthDate(t *testing.T) {
	assert.Nil(t, ProfileEditForm{}.BirthDate())

	d := ProfileEditForm{DateOfBirth: "1990-04-12"}.BirthDate()
	require.NotNil(t, d)
	assert.Equal(t, time.April, d.Month())

	errs := Validate(&ProfileEditForm{DateOfBirth: "12/04/1990"})
	assert.Equal(t, "Enter a valid date.", errs.Get("date_of_birth"))
}
