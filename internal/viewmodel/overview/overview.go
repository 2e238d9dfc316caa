// Package overview строит главную страницу: карточки статистики, диаграмму тарифов
// и график дохода по месяцам. Все значения — чистые функции последнего успешного ответа;
// при отсутствии данных показываются нули, а ошибки графиков не мешают странице.
package overview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/month"
	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

var printer = message.NewPrinter(language.English)

// ErrYearOutOfRange — год графика вне допустимого диапазона, см. month.ValidYear.
var ErrYearOutOfRange = errors.New("year out of range")

// StatCard — одна карточка статистики.
type StatCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Raw   int    `json:"raw"`
}

// Segment — сектор кольцевой диаграммы.
type Segment struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}

// Donut — распределение пользователей по тарифам.
type Donut struct {
	Free     int       `json:"free"`
	Premium  int       `json:"premium"`
	Total    int       `json:"total"`
	Segments []Segment `json:"segments"`
}

// Point — точка графика дохода.
type Point struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Chart — график дохода за выбранный год.
type Chart struct {
	Year   int     `json:"year"`
	Years  []int   `json:"years"`
	Points []Point `json:"points"`
}

// Page — состояние главной страницы.
type Page struct {
	Cards         []StatCard `json:"cards"`
	TotalEarnings string     `json:"totalEarnings"`
	Donut         Donut      `json:"donut"`
	Earnings      Chart      `json:"earnings"`
}

// ViewModel — логика главной страницы.
type ViewModel struct {
	set  *resources.Set
	sess feedback.SessionClearer
	log  *slog.Logger
	now  func() time.Time
}

// New создаёт модель главной страницы.
func New(set *resources.Set, sess feedback.SessionClearer, log *slog.Logger) *ViewModel {
	return &ViewModel{set: set, sess: sess, log: log, now: time.Now}
}

// Page собирает главную страницу за год year; 0 означает текущий год.
// Ошибка возвращается только при потере сессии.
func (vm *ViewModel) Page(ctx context.Context, year int) (Page, error) {
	const op = "viewmodel.overview.Page"
	log := vm.log.With(sl.Op(op))

	var stats *models.Overview
	st := vm.set.Stats.Load(ctx)
	switch {
	case st.Status == query.Error && feedback.Unauthenticated(st.Err):
		vm.sess.Clear()
		return Page{}, fmt.Errorf("%s: %w", op, st.Err)
	case st.Status == query.Error:
		log.Warn("stats unavailable, showing defaults", sl.Err(st.Err))
	}
	if st.HasData {
		stats = &st.Data
	}

	chart, err := vm.Earnings(ctx, year)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", op, err)
	}

	page := Page{
		Cards:    StatCards(stats),
		Donut:    NewDonut(stats),
		Earnings: chart,
	}
	var earnings float64
	if stats != nil {
		earnings = stats.TotalEarnings
	}
	page.TotalEarnings = printer.Sprintf("$%.2f", earnings)
	return page, nil
}

// Earnings возвращает график дохода за год. Ошибка выборки даёт пустой график,
// ошибка возвращается только при потере сессии.
func (vm *ViewModel) Earnings(ctx context.Context, year int) (Chart, error) {
	const op = "viewmodel.overview.Earnings"

	now := vm.now()
	if year <= 0 {
		year = now.Year()
	}
	// Каждый год держит свой запрос, поэтому произвольные значения не принимаются.
	if !month.ValidYear(now, year) {
		return Chart{}, fmt.Errorf("%s: %d: %w", op, year, ErrYearOutOfRange)
	}
	chart := Chart{Year: year, Years: month.YearOptions(now), Points: []Point{}}

	st := vm.set.Earnings.Get(year).Load(ctx)
	if st.Status == query.Error {
		if feedback.Unauthenticated(st.Err) {
			vm.sess.Clear()
			return Chart{}, fmt.Errorf("%s: %w", op, st.Err)
		}
		vm.log.Warn("earnings unavailable, showing empty chart", sl.Op(op), sl.Err(st.Err))
	}
	if st.HasData {
		chart.Points = Series(st.Data)
	}
	return chart, nil
}

// StatCards строит карточки статистики с разделителями тысяч. nil даёт нули.
func StatCards(o *models.Overview) []StatCard {
	var v models.Overview
	if o != nil {
		v = *o
	}
	card := func(label string, n int) StatCard {
		return StatCard{Label: label, Value: printer.Sprintf("%d", n), Raw: n}
	}
	return []StatCard{
		card("Total Users", v.TotalUsers),
		card("Total Events", v.TotalEvents),
		card("Free Users", v.FreeUsers),
		card("Premium Users", v.PremiumUsers),
	}
}

// NewDonut строит диаграмму бесплатных и премиум-пользователей. nil даёт нули.
func NewDonut(o *models.Overview) Donut {
	var d Donut
	if o != nil {
		d.Free, d.Premium = o.FreeUsers, o.PremiumUsers
	}
	d.Total = d.Free + d.Premium
	d.Segments = []Segment{
		{Label: "Free Users", Value: d.Free, Percent: percent(d.Free, d.Total)},
		{Label: "Premium Users", Value: d.Premium, Percent: percent(d.Premium, d.Total)},
	}
	return d
}

// Series переводит номера месяцев в короткие имена; точки с неверным месяцем пропускаются.
func Series(points []models.EarningPoint) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		name := month.Short(p.Month)
		if name == "" {
			continue
		}
		out = append(out, Point{Month: name, Value: p.TotalIncome})
	}
	return out
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
