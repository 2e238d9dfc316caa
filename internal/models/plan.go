package models

import "time"

// BillingCycle — период оплаты, по которому выбирается отображаемая цена тарифа.
type BillingCycle string

const (
	CycleFree  BillingCycle = "free"
	CycleMonth BillingCycle = "month"
	CycleYear  BillingCycle = "year"
)

// Valid сообщает, является ли значение известным периодом оплаты.
func (c BillingCycle) Valid() bool {
	switch c {
	case CycleFree, CycleMonth, CycleYear:
		return true
	}
	return false
}

// PlanPrice — цена тарифа для одного периода оплаты.
type PlanPrice struct {
	Type      BillingCycle `json:"type" validate:"required,oneof=free month year"`
	Price     float64      `json:"price" validate:"gte=0"`
	PriceID   string       `json:"priceId,omitempty"`
	ProductID string       `json:"productId,omitempty"`
	ID        string       `json:"_id,omitempty"`
}

// Plan представляет пакет подписки.
type Plan struct {
	ID               string      `json:"_id"`
	Title            string      `json:"title"`
	PlanPrices       []PlanPrice `json:"planPrices"`
	Benefits         []string    `json:"benefits"`
	ParticipantCount int         `json:"participantCount"`
	IsDeleted        bool        `json:"isDeleted,omitempty"`
	CreatedAt        *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time  `json:"updatedAt,omitempty"`
}

// Price возвращает цену для периода оплаты, если она задана.
func (p Plan) Price(cycle BillingCycle) (PlanPrice, bool) {
	for _, pp := range p.PlanPrices {
		if pp.Type == cycle {
			return pp, true
		}
	}
	return PlanPrice{}, false
}

// PlanInput — тело запроса на создание или изменение тарифа.
// Кроме обязательных полей клиент ничего не проверяет.
type PlanInput struct {
	Title            string      `json:"title" validate:"required"`
	ParticipantCount int         `json:"participantCount" validate:"required,gt=0"`
	Benefits         []string    `json:"benefits"`
	PlanPrices       []PlanPrice `json:"planPrices" validate:"dive"`
}
