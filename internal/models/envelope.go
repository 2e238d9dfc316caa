// Package models содержит доменные структуры, которыми консоль обменивается с удалённым API:
// конверт ответа, пользователей, тарифы, уведомления, профиль администратора и агрегаты.
// Клиент не хранит авторитетного состояния, это только копии ответов сервера.
package models

// Meta описывает метаданные пагинации из конверта ответа.
type Meta struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"totalPage"`
}

// Envelope — стандартный конверт ответа API: { success, message, data, meta? }.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Meta    *Meta  `json:"meta,omitempty"`
}
