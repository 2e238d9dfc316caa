package models

import "time"

// Notification — уведомление администратора.
type Notification struct {
	ID        string    `json:"_id"`
	Message   string    `json:"message"`
	Role      string    `json:"role"`
	Type      string    `json:"type"` // Категория: success, error, warning, info...
	Status    string    `json:"status"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
