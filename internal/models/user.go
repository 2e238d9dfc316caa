package models

import "time"

// Tier — категория пользователя, выводимая из наличия подписки.
type Tier string

const (
	TierFree    Tier = "Free"
	TierPremium Tier = "Premium"
)

// User представляет пользователя платформы в том виде, в каком его отдаёт /users/all-users.
type User struct {
	ID             string    `json:"_id"`
	Profile        string    `json:"profile"`        // Относительный путь к аватару
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"isActive"`       // false — пользователь заблокирован
	IsDeleted      bool      `json:"isDeleted"`
	Phone          string    `json:"phone"`
	SubscriptionID *string   `json:"subscriptionId"` // nil — бесплатный тариф
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Tier возвращает Premium тогда и только тогда, когда у пользователя есть ссылка на подписку.
func (u User) Tier() Tier {
	if u.SubscriptionID != nil {
		return TierPremium
	}
	return TierFree
}
