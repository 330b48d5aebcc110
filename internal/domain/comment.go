package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment — комментарий к посту. Удаляется каскадно вместе с постом,
// скрывается снятием флага Active, а не удалением.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID  `json:"post_id" db:"post_id" gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id" gorm:"type:uuid;index"`
	Name      string     `json:"name" db:"name" gorm:"size:80;not null"`
	Email     string     `json:"email" db:"email" gorm:"size:254;not null"`
	Body      string     `json:"body" db:"body" gorm:"type:text;not null"`
	CreatedAt time.Time  `json:"created_at" db:"created_at" gorm:"index"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	Active    bool       `json:"active" db:"active" gorm:"not null"`
}

func (Comment) TableName() string {
	return "comments"
}
