package domain

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Image — изображение, добавленное пользователем по внешнему URL.
// Соответствует таблице images в бд; сами байты лежат в объектном хранилище под ImageKey.
type Image struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index"`
	User        *User     `json:"user,omitempty" db:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Title       string    `json:"title" db:"title" gorm:"size:200;not null"`
	Slug        string    `json:"slug" db:"slug" gorm:"size:200"`
	URL         string    `json:"url" db:"url" gorm:"size:2000;not null"`
	ImageKey    string    `json:"image_key" db:"image_key" gorm:"not null"`
	Description string    `json:"description" db:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"index"`
}

func (Image) TableName() string {
	return "images"
}

// AbsoluteURL возвращает канонический путь изображения.
func (i *Image) AbsoluteURL() string {
	return fmt.Sprintf("/images/detail/%s/%s/", i.ID, i.Slug)
}

// ErrUnsupportedImage — содержимое файла не JPEG и не PNG
var ErrUnsupportedImage = errors.New("unsupported image content")

// StoredImageTypes — типы содержимого, которые сайт кладёт в хранилище и отдаёт из /media/
var StoredImageTypes = []string{"image/jpeg", "image/png"}

// DetectImageType определяет тип по первым байтам файла; заявленный клиентом тип не учитывается.
// Для всего, кроме JPEG и PNG, возвращает ErrUnsupportedImage.
func DetectImageType(head []byte) (string, error) {
	contentType := http.DetectContentType(head)
	if !slices.Contains(StoredImageTypes, contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}
	return contentType, nil
}
