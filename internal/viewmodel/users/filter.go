package users

import (
	"strings"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
)

// StatusFilter — фильтр по состоянию блокировки.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusActive  StatusFilter = "active"
	StatusBlocked StatusFilter = "blocked"
)

// TypeFilter — фильтр по тарифу.
type TypeFilter string

const (
	TypeAll     TypeFilter = "all"
	TypeFree    TypeFilter = "free"
	TypePremium TypeFilter = "premium"
)

// Filter — поиск и фильтры списка пользователей. Пустые значения означают "all".
type Filter struct {
	Search string       `json:"search"`
	Status StatusFilter `json:"status"`
	Type   TypeFilter   `json:"type"`
}

// Match проверяет все три условия сразу: поиск по имени или почте без учёта регистра,
// состояние блокировки и тариф. Поисковая строка сравнивается как есть, пробелы входят в неё.
func (f Filter) Match(u models.User) bool {
	if term := strings.ToLower(f.Search); term != "" {
		if !strings.Contains(strings.ToLower(u.FullName), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) {
			return false
		}
	}

	switch f.Status {
	case StatusActive:
		if !u.IsActive {
			return false
		}
	case StatusBlocked:
		if u.IsActive {
			return false
		}
	}

	switch f.Type {
	case TypeFree:
		if u.Tier() != models.TierFree {
			return false
		}
	case TypePremium:
		if u.Tier() != models.TierPremium {
			return false
		}
	}
	return true
}

// Apply возвращает пользователей, удовлетворяющих фильтру, в исходном порядке.
func Apply(users []models.User, f Filter) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}

// Pagination описывает нарезку уже отфильтрованного списка.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate возвращает страницу page (с 1) размера size.
// Страница за пределами списка приводится к последней.
func Paginate[T any](items []T, page, size int) ([]T, Pagination) {
	if size <= 0 {
		size = 10
	}
	total := len(items)
	pages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}

	from := min((page-1)*size, total)
	to := min(from+size, total)
	return items[from:to], Pagination{Page: page, Limit: size, Total: total, TotalPages: pages}
}
