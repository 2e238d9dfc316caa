package models

// Overview — агрегаты для карточек статистики на главной странице.
type Overview struct {
	TotalUsers    int     `json:"totalUsers"`
	TotalEvents   int     `json:"totalEvents"`
	FreeUsers     int     `json:"freeUsers"`
	PremiumUsers  int     `json:"premiumUsers"`
	TotalEarnings float64 `json:"totalEarnings"`
}

// EarningPoint — доход за один месяц года.
type EarningPoint struct {
	Month       int     `json:"month"` // 1..12
	TotalIncome float64 `json:"totalIncome"`
}
