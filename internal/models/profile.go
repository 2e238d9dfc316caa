package models

import (
	"io"
	"time"
)

// Profile — собственная запись авторизованного администратора.
type Profile struct {
	Profile   string    `json:"profile"` // Относительный путь к аватару
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Upload — файл, передаваемый multipart-частью.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProfileUpdate — поля формы редактирования профиля; Image необязателен.
type ProfileUpdate struct {
	FullName string `validate:"required"`
	Email    string `validate:"required,email"`
	Role     string
	Phone    string
	Image    *Upload
}
