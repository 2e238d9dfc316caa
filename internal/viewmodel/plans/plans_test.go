package plans

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/apitest"
	"github.com/magabrotheeeer/subscription-admin/internal/transport"
)

func newVM(t *testing.T) (*ViewModel, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	sess := srv.Session()
	log := slog.New(slog.DiscardHandler)
	set := resources.New(srv.Client(sess), log, resources.Options{})
	return New(set, sess, log), srv
}

func TestDefaultCycle(t *testing.T) {
	tests := []struct {
		name   string
		prices []models.PlanPrice
		want   models.BillingCycle
	}{
		{name: "month wins", prices: []models.PlanPrice{{Type: models.CycleYear}, {Type: models.CycleMonth}}, want: models.CycleMonth},
		{name: "year when no month", prices: []models.PlanPrice{{Type: models.CycleFree}, {Type: models.CycleYear}}, want: models.CycleYear},
		{name: "free otherwise", prices: []models.PlanPrice{{Type: models.CycleFree}}, want: models.CycleFree},
		{name: "no prices", want: models.CycleFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultCycle(models.Plan{PlanPrices: tt.prices}))
		})
	}
}

func TestDisplayPrice(t *testing.T) {
	yearOnly := models.Plan{PlanPrices: []models.PlanPrice{{Type: models.CycleYear, Price: 99.5}}}

	price, suffix := DisplayPrice(yearOnly, models.CycleYear)
	assert.Equal(t, "99.50", price)
	assert.Equal(t, "/year", suffix)

	price, suffix = DisplayPrice(yearOnly, models.CycleMonth)
	assert.Equal(t, "0.00", price)
	assert.Equal(t, "", suffix)

	free := models.Plan{PlanPrices: []models.PlanPrice{{Type: models.CycleFree, Price: 0}}}
	price, suffix = DisplayPrice(free, models.CycleFree)
	assert.Equal(t, "0.00", price)
	assert.Equal(t, "", suffix)
}

func TestNewCard(t *testing.T) {
	p := models.Plan{ID: "p", Title: "Pro", PlanPrices: []models.PlanPrice{
		{Type: models.CycleMonth, Price: 19.99},
		{Type: models.CycleYear, Price: 199},
	}}

	card := NewCard(p, "")
	assert.Equal(t, models.CycleMonth, card.Cycle)
	assert.Equal(t, "$19.99/month", card.Display)
	assert.Equal(t, []models.BillingCycle{models.CycleMonth, models.CycleYear}, card.Cycles)

	card = NewCard(p, models.CycleYear)
	assert.Equal(t, "$199.00/year", card.Display)

	card = NewCard(p, "weekly")
	assert.Equal(t, models.CycleMonth, card.Cycle)
}

func TestCreate_StarterScenario(t *testing.T) {
	vm, srv := newVM(t)
	ctx := context.Background()

	_, err := vm.Page(ctx, nil)
	require.NoError(t, err)

	out := vm.Create(ctx, models.PlanInput{
		Title:            "Starter",
		ParticipantCount: 10,
		Benefits:         []string{"Priority support"},
		PlanPrices:       []models.PlanPrice{{Type: models.CycleMonth, Price: 9.99}},
	})
	require.True(t, out.OK)
	assert.True(t, out.CloseModal)
	assert.Equal(t, "Package created successfully!", out.Toasts[0].Message)
	assert.Equal(t, []string{resources.QueryPlans}, out.Refetched)

	page, err := vm.Page(ctx, nil)
	require.NoError(t, err)

	var starters []Card
	for _, c := range page.Cards {
		if c.Title == "Starter" {
			starters = append(starters, c)
		}
	}
	require.Len(t, starters, 1)
	assert.Equal(t, "$9.99/month", starters[0].Display)
	assert.Equal(t, 2, srv.Hits(http.MethodGet, "/package/packages"))
}

func TestCreate_ValidationShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		in   models.PlanInput
	}{
		{name: "missing title", in: models.PlanInput{ParticipantCount: 10}},
		{name: "missing participant count", in: models.PlanInput{Title: "Starter"}},
		{name: "unknown cycle", in: models.PlanInput{Title: "Starter", ParticipantCount: 1, PlanPrices: []models.PlanPrice{{Type: "weekly"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, srv := newVM(t)

			out := vm.Create(context.Background(), tt.in)
			assert.False(t, out.OK)
			assert.Equal(t, transport.KindValidation, transport.KindOf(out.Err))
			assert.NotEmpty(t, out.Toasts)
			assert.Equal(t, 0, srv.TotalHits())
		})
	}
}

func TestUpdate(t *testing.T) {
	vm, srv := newVM(t)

	out := vm.Update(context.Background(), "p2", models.PlanInput{
		Title:            "Pro Max",
		ParticipantCount: 100,
		PlanPrices:       []models.PlanPrice{{Type: models.CycleYear, Price: 299}},
	})
	require.True(t, out.OK)
	assert.Equal(t, "Package updated successfully!", out.Toasts[0].Message)
	assert.Equal(t, "Pro Max", srv.Plans()[1].Title)
}

func TestDelete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		vm, srv := newVM(t)

		out := vm.Delete(context.Background(), "p1")
		require.True(t, out.OK)
		assert.Equal(t, "Plan deleted successfully!", out.Toasts[0].Message)
		assert.Len(t, srv.Plans(), 1)
	})

	t.Run("server message on failure", func(t *testing.T) {
		vm, srv := newVM(t)
		srv.Fail(http.MethodDelete, "/package/p1", http.StatusConflict, "Package has active subscribers")

		out := vm.Delete(context.Background(), "p1")
		assert.False(t, out.OK)
		assert.Equal(t, "Package has active subscribers", out.Toasts[0].Message)
		assert.Empty(t, out.Refetched)
		assert.Len(t, srv.Plans(), 2)
	})

	t.Run("fallback on failure", func(t *testing.T) {
		vm, srv := newVM(t)
		srv.Fail(http.MethodDelete, "/package/p1", http.StatusInternalServerError, "")

		out := vm.Delete(context.Background(), "p1")
		assert.Equal(t, "Failed to delete plan", out.Toasts[0].Message)
	})
}
