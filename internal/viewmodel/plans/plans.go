// Package plans строит страницу тарифов: карточки с переключателем периода оплаты
// и создание, изменение, удаление тарифа.
package plans

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

var (
	createMessages = feedback.Messages{Success: "Package created successfully!", Failure: "Failed to create package"}
	updateMessages = feedback.Messages{Success: "Package updated successfully!", Failure: "Failed to update package"}
	deleteMessages = feedback.Messages{Success: "Plan deleted successfully!", Failure: "Failed to delete plan"}
)

// Card — карточка тарифа.
type Card struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	ParticipantCount int                   `json:"participantCount"`
	Benefits         []string              `json:"benefits"`
	Cycle            models.BillingCycle   `json:"cycle"`
	Cycles           []models.BillingCycle `json:"cycles,omitempty"`
	Price            string                `json:"price"`
	Suffix           string                `json:"suffix"`
	Display          string                `json:"display"`
}

// Page — состояние страницы тарифов.
type Page struct {
	Cards []Card `json:"cards"`
}

// ViewModel — логика страницы тарифов.
type ViewModel struct {
	set    *resources.Set
	sess   feedback.SessionClearer
	log    *slog.Logger
	create *query.Mutation[models.PlanInput, models.Envelope[models.Plan]]
	update *query.Mutation[updateInput, models.Envelope[models.Plan]]
	remove *query.Mutation[string, models.Envelope[struct{}]]
}

type updateInput struct {
	id string
	in models.PlanInput
}

// New создаёт модель страницы тарифов.
func New(set *resources.Set, sess feedback.SessionClearer, log *slog.Logger) *ViewModel {
	return &ViewModel{
		set:    set,
		sess:   sess,
		log:    log,
		create: query.NewMutation("packages.create", set.API.Packages.Create, log),
		update: query.NewMutation("packages.update", func(ctx context.Context, u updateInput) (models.Envelope[models.Plan], error) {
			return set.API.Packages.Update(ctx, u.id, u.in)
		}, log),
		remove: query.NewMutation("packages.delete", set.API.Packages.Delete, log),
	}
}

// Page возвращает карточки тарифов. selected хранит выбранный период для карточки по id;
// отсутствующий или недоступный период заменяется периодом по умолчанию.
func (vm *ViewModel) Page(ctx context.Context, selected map[string]models.BillingCycle) (Page, error) {
	const op = "viewmodel.plans.Page"

	st := vm.set.Plans.Load(ctx)
	if st.Status == query.Error {
		feedback.Lost(vm.sess, st.Err)
		return Page{}, fmt.Errorf("%s: %w", op, st.Err)
	}

	out := Page{Cards: make([]Card, 0, len(st.Data))}
	for _, p := range st.Data {
		out.Cards = append(out.Cards, NewCard(p, selected[p.ID]))
	}
	return out, nil
}

// Create проверяет обязательные поля и создаёт тариф.
func (vm *ViewModel) Create(ctx context.Context, in models.PlanInput) feedback.Outcome {
	if err := validate.Struct(in); err != nil {
		return feedback.Rejected("packages.create", err.Error())
	}
	env, err := vm.create.Run(ctx, in)
	out := feedback.AfterMutation(ctx, vm.log, vm.sess, err, env.Message, createMessages, vm.set.Plans)
	if out.OK {
		out.Data = env.Data
	}
	return out
}

// Update проверяет обязательные поля и изменяет тариф.
func (vm *ViewModel) Update(ctx context.Context, id string, in models.PlanInput) feedback.Outcome {
	if id == "" {
		return feedback.Rejected("packages.update", "field ID is a required field")
	}
	if err := validate.Struct(in); err != nil {
		return feedback.Rejected("packages.update", err.Error())
	}
	env, err := vm.update.Run(ctx, updateInput{id: id, in: in})
	out := feedback.AfterMutation(ctx, vm.log, vm.sess, err, env.Message, updateMessages, vm.set.Plans)
	if out.OK {
		out.Data = env.Data
	}
	return out
}

// Delete удаляет тариф.
func (vm *ViewModel) Delete(ctx context.Context, id string) feedback.Outcome {
	if id == "" {
		return feedback.Rejected("packages.delete", "field ID is a required field")
	}
	env, err := vm.remove.Run(ctx, id)
	return feedback.AfterMutation(ctx, vm.log, vm.sess, err, env.Message, deleteMessages, vm.set.Plans)
}

// NewCard строит карточку для выбранного периода.
func NewCard(p models.Plan, cycle models.BillingCycle) Card {
	if !cycle.Valid() {
		cycle = DefaultCycle(p)
	}
	price, suffix := DisplayPrice(p, cycle)
	return Card{
		ID:               p.ID,
		Title:            p.Title,
		ParticipantCount: p.ParticipantCount,
		Benefits:         p.Benefits,
		Cycle:            cycle,
		Cycles:           Cycles(p),
		Price:            price,
		Suffix:           suffix,
		Display:          "$" + price + suffix,
	}
}

// DefaultCycle выбирает первый существующий период в порядке month, year, free.
func DefaultCycle(p models.Plan) models.BillingCycle {
	for _, c := range []models.BillingCycle{models.CycleMonth, models.CycleYear} {
		if _, ok := p.Price(c); ok {
			return c
		}
	}
	return models.CycleFree
}

// DisplayPrice возвращает цену с двумя знаками и суффикс периода.
// Если цены для периода нет, цена "0.00" без суффикса.
func DisplayPrice(p models.Plan, cycle models.BillingCycle) (price, suffix string) {
	pp, ok := p.Price(cycle)
	if !ok {
		return "0.00", ""
	}
	switch cycle {
	case models.CycleMonth:
		suffix = "/month"
	case models.CycleYear:
		suffix = "/year"
	}
	return fmt.Sprintf("%.2f", pp.Price), suffix
}

// Cycles возвращает периоды для переключателя: month и year, если они заданы.
func Cycles(p models.Plan) []models.BillingCycle {
	var out []models.BillingCycle
	for _, c := range []models.BillingCycle{models.CycleMonth, models.CycleYear} {
		if _, ok := p.Price(c); ok {
			out = append(out, c)
		}
	}
	return out
}
