package domain

import (
	"time"

	"github.com/google/uuid"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Username     string     `json:"username" db:"username" gorm:"size:150;not null;uniqueIndex"`
	FirstName    string     `json:"first_name" db:"first_name" gorm:"size:150"`
	LastName     string     `json:"last_name" db:"last_name" gorm:"size:150"`
	Email        string     `json:"email" db:"email" gorm:"size:254;index"`
	PasswordHash string     `json:"-" db:"password_hash" gorm:"not null"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`

	Profile *Profile `json:"profile,omitempty" db:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName возвращает имя для приветствия на дашборде.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// Profile расширяет User датой рождения и фотографией.
// Соответствует таблице 'profiles', связь один-к-одному через user_id.
type Profile struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth" gorm:"type:date"`
	// PhotoKey — ключ объекта в хранилище (users/YYYY/MM/DD/<name>), пустой если фото нет
	PhotoKey  string    `json:"photo_key,omitempty" db:"photo_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
