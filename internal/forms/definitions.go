package forms

import (
	"path"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04"
)

// ValidImageExtensions — допустимые расширения изображений, добавляемых по URL.
var ValidImageExtensions = []string{"jpg", "jpeg", "png"}

// ImageExtension возвращает расширение последнего сегмента пути URL в нижнем регистре.
// Строка запроса и фрагмент не учитываются.
func ImageExtension(rawURL string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := path.Ext(p)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// HasImageExtension сообщает, оканчивается ли URL на одно из ValidImageExtensions.
func HasImageExtension(rawURL string) bool {
	ext := ImageExtension(rawURL)
	for _, v := range ValidImageExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

type LoginForm struct {
	Username string `schema:"username" validate:"required"`
	Password string `schema:"password" validate:"required"`
}

type RegistrationForm struct {
	Username  string `schema:"username" validate:"required,max=150,username"`
	FirstName string `schema:"first_name" validate:"max=150"`
	Email     string `schema:"email" validate:"required,email,max=254"`
	Password  string `schema:"password" validate:"required,min=8"`
	Password2 string `schema:"password2" validate:"required,eqfield=Password"`
}

type UserEditForm struct {
	FirstName string `schema:"first_name" validate:"max=150"`
	LastName  string `schema:"last_name" validate:"max=150"`
	Email     string `schema:"email" validate:"required,email,max=254"`
}

// ProfileEditForm — редактируемые поля профиля; фото приходит отдельным файлом multipart.
type ProfileEditForm struct {
	DateOfBirth string `schema:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// BirthDate разбирает DateOfBirth, пустое значение даёт nil.
func (f ProfileEditForm) BirthDate() *time.Time {
	if f.DateOfBirth == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, f.DateOfBirth)
	if err != nil {
		return nil
	}
	return &d
}

type PasswordChangeForm struct {
	OldPassword  string `schema:"old_password" validate:"required"`
	NewPassword1 string `schema:"new_password1" validate:"required,min=8"`
	NewPassword2 string `schema:"new_password2" validate:"required,eqfield=NewPassword1"`
}

type PasswordResetForm struct {
	Email string `schema:"email" validate:"required,email,max=254"`
}

type SetPasswordForm struct {
	NewPassword1 string `schema:"new_password1" validate:"required,min=8"`
	NewPassword2 string `schema:"new_password2" validate:"required,eqfield=NewPassword1"`
}

type CommentForm struct {
	Name  string `schema:"name" validate:"required,max=80"`
	Email string `schema:"email" validate:"required,email,max=254"`
	Body  string `schema:"body" validate:"required"`
}

type EmailPostForm struct {
	Name     string `schema:"name" validate:"required,max=25"`
	Email    string `schema:"email" validate:"required,email,max=254"`
	To       string `schema:"to" validate:"required,email,max=254"`
	Comments string `schema:"comments"`
}

type SearchForm struct {
	Query string `schema:"query" validate:"required,max=64"`
}

type ImageCreateForm struct {
	Title       string `schema:"title" validate:"required,max=200"`
	URL         string `schema:"url" validate:"required,url,max=2000,imageurl"`
	Description string `schema:"description"`
}

// PostForm — создание и редактирование поста. Пустой Slug строится из заголовка,
// пустой Publish означает «сейчас».
type PostForm struct {
	Title   string `schema:"title" validate:"required,max=250"`
	Slug    string `schema:"slug" validate:"max=250"`
	Body    string `schema:"body" validate:"required"`
	Publish string `schema:"publish" validate:"omitempty,datetime=2006-01-02T15:04"`
	Status  string `schema:"status" validate:"required,oneof=DF PB"`
	Tags    string `schema:"tags"`
}

// PublishTime разбирает Publish как время UTC, пустое значение даёт now.
func (f PostForm) PublishTime(now time.Time) time.Time {
	if f.Publish == "" {
		return now.UTC()
	}
	t, err := time.ParseInLocation(DateTimeLayout, f.Publish, time.UTC)
	if err != nil {
		return now.UTC()
	}
	return t
}

// TagNames разбивает поле тегов по запятым, отбрасывая пустые элементы.
func (f PostForm) TagNames() []string {
	var names []string
	for _, part := range strings.Split(f.Tags, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
