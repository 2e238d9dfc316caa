package users

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/resources/apitest"
	"github.com/magabrotheeeer/subscription-admin/internal/session"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

func newVM(t *testing.T) (*ViewModel, *apitest.Server, *session.Session) {
	t.Helper()
	srv := apitest.New(t)
	sess := srv.Session()
	log := slog.New(slog.DiscardHandler)
	set := resources.New(srv.Client(sess), log, resources.Options{})
	return New(set, sess, log, 10), srv, sess
}

func sampleUsers() []models.User {
	sub := "sub"
	return []models.User{
		{ID: "1", FullName: "Jacob Jones", Email: "jacob@example.com", IsActive: true, SubscriptionID: &sub},
		{ID: "2", FullName: "Kristin Watson", Email: "kw@MAIL.com", IsActive: true},
		{ID: "3", FullName: "Cody Fisher", Email: "cody@example.com", IsActive: false, SubscriptionID: &sub},
		{ID: "4", FullName: "Esther Howard", Email: "esther@mail.com", IsActive: false},
	}
}

func ids(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"1", "2", "3", "4"}},
		{name: "search by name case insensitive", filter: Filter{Search: "JACOB"}, want: []string{"1"}},
		{name: "search by email", filter: Filter{Search: "mail.com"}, want: []string{"2", "4"}},
		{name: "active only", filter: Filter{Status: StatusActive}, want: []string{"1", "2"}},
		{name: "blocked only", filter: Filter{Status: StatusBlocked}, want: []string{"3", "4"}},
		{name: "premium only", filter: Filter{Type: TypePremium}, want: []string{"1", "3"}},
		{name: "free only", filter: Filter{Type: TypeFree}, want: []string{"2", "4"}},
		{name: "active and premium", filter: Filter{Status: StatusActive, Type: TypePremium}, want: []string{"1"}},
		{name: "all three predicates", filter: Filter{Search: "example", Status: StatusBlocked, Type: TypePremium}, want: []string{"3"}},
		{name: "explicit all", filter: Filter{Status: StatusAll, Type: TypeAll}, want: []string{"1", "2", "3", "4"}},
		{name: "nothing matches", filter: Filter{Search: "zzz"}, want: []string{}},
		{name: "spaces are part of the term", filter: Filter{Search: "b J"}, want: []string{"1"}},
		{name: "trailing space is not trimmed", filter: Filter{Search: "Jones "}, want: []string{}},
		{name: "space only matches names with a space", filter: Filter{Search: " "}, want: []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sampleUsers(), tt.filter)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_SearchProperty(t *testing.T) {
	for _, term := range []string{"a", "J", "ex", "MAIL", "on", " ", "n F"} {
		for _, u := range Apply(sampleUsers(), Filter{Search: term}) {
			lower := strings.ToLower(term)
			assert.True(t,
				strings.Contains(strings.ToLower(u.FullName), lower) || strings.Contains(strings.ToLower(u.Email), lower),
				"user %s does not contain %q", u.ID, term)
		}
	}
}

func TestFilter_ActivePremiumIsIntersection(t *testing.T) {
	users := sampleUsers()
	active := Apply(users, Filter{Status: StatusActive})
	premium := Apply(users, Filter{Type: TypePremium})

	var want []string
	for _, a := range active {
		for _, p := range premium {
			if a.ID == p.ID {
				want = append(want, a.ID)
			}
		}
	}
	assert.Equal(t, want, ids(Apply(users, Filter{Status: StatusActive, Type: TypePremium})))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name       string
		page, size int
		want       []int
		wantPg     Pagination
	}{
		{name: "first page", page: 1, size: 2, want: []int{1, 2}, wantPg: Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3}},
		{name: "last partial page", page: 3, size: 2, want: []int{5}, wantPg: Pagination{Page: 3, Limit: 2, Total: 5, TotalPages: 3}},
		{name: "page past end clamps", page: 9, size: 2, want: []int{5}, wantPg: Pagination{Page: 3, Limit: 2, Total: 5, TotalPages: 3}},
		{name: "zero page", page: 0, size: 10, want: []int{1, 2, 3, 4, 5}, wantPg: Pagination{Page: 1, Limit: 10, Total: 5, TotalPages: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pg := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPg, pg)
		})
	}

	got, pg := Paginate([]int{}, 1, 10)
	assert.Empty(t, got)
	assert.Equal(t, 0, pg.TotalPages)
}

func TestLastActive(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Just now", LastActive(now.Add(-30*time.Minute), now))
	assert.Equal(t, "5h ago", LastActive(now.Add(-5*time.Hour), now))
	assert.Equal(t, "3d ago", LastActive(now.Add(-75*time.Hour), now))
}

func TestConfirm(t *testing.T) {
	p := Confirm(models.User{ID: "1", FullName: "Jacob Jones", IsActive: true})
	assert.True(t, p.Block)
	assert.Equal(t, "Block User", p.Title)
	assert.Equal(t, "Yes, Block User", p.Confirm)
	assert.Contains(t, p.Message, "Jacob Jones")

	p = Confirm(models.User{ID: "2", FullName: "Cody Fisher"})
	assert.False(t, p.Block)
	assert.Equal(t, "Unblock User", p.Title)
	assert.Equal(t, "Yes, Unblock User", p.Confirm)
}

func TestPage(t *testing.T) {
	vm, _, _ := newVM(t)

	page, err := vm.Page(context.Background(), Filter{Status: StatusActive}, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, page.Pagination)
	assert.Equal(t, "Showing 3 of 5 Results", page.Summary)

	row := page.Rows[0]
	assert.Equal(t, "Jacob Jones", row.Name)
	assert.Equal(t, "J", row.Initial)
	assert.Equal(t, models.TierPremium, row.Tier)
	assert.Equal(t, "Active", row.Status)
	assert.Equal(t, "01/15/2024", row.JoinDate)
	assert.True(t, strings.HasSuffix(row.Avatar, "/uploads/jacob.png"))

	page, err = vm.Page(context.Background(), Filter{Search: "nobody"}, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, EmptyMessage, page.Empty)
	assert.Empty(t, page.Summary)
}

func TestToggleBlock_ReclassifiesAfterRefetch(t *testing.T) {
	vm, srv, _ := newVM(t)
	ctx := context.Background()

	before, err := vm.Page(ctx, Filter{Status: StatusActive}, 1, 10)
	require.NoError(t, err)
	require.Contains(t, rowIDs(before.Rows), "u1")

	prompt, err := vm.Prompt(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, prompt.Block)

	out := vm.ToggleBlock(ctx, "u1")
	require.True(t, out.OK)
	assert.True(t, out.CloseModal)
	assert.Equal(t, "User blocked successfully", out.Toasts[0].Message)
	assert.Equal(t, []string{resources.QueryUsers, resources.QueryStats}, out.Refetched)

	active, err := vm.Page(ctx, Filter{Status: StatusActive}, 1, 10)
	require.NoError(t, err)
	assert.NotContains(t, rowIDs(active.Rows), "u1")

	blocked, err := vm.Page(ctx, Filter{Status: StatusBlocked}, 1, 10)
	require.NoError(t, err)
	assert.Contains(t, rowIDs(blocked.Rows), "u1")
	assert.Equal(t, 2, srv.Hits(http.MethodGet, "/users/all-users"))
}

func TestToggleBlock_Failure(t *testing.T) {
	vm, srv, _ := newVM(t)
	srv.Fail(http.MethodPatch, "/users/blocked/u1", http.StatusInternalServerError, "")

	out := vm.ToggleBlock(context.Background(), "u1")
	assert.False(t, out.OK)
	assert.False(t, out.CloseModal)
	assert.Equal(t, []feedback.Toast{{Level: feedback.LevelError, Message: "Failed to update user status"}}, out.Toasts)
	assert.Empty(t, out.Refetched)
	assert.Equal(t, 0, srv.Hits(http.MethodGet, "/users/all-users"))
}

func TestToggleBlock_SessionRejected(t *testing.T) {
	vm, srv, sess := newVM(t)
	srv.Fail(http.MethodPatch, "/users/blocked/u1", http.StatusUnauthorized, "jwt expired")

	out := vm.ToggleBlock(context.Background(), "u1")
	assert.Equal(t, feedback.LoginPath, out.Redirect)
	assert.False(t, sess.Authenticated())
}

func rowIDs(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestPage_SessionRejected(t *testing.T) {
	vm, srv, sess := newVM(t)
	srv.Fail(http.MethodGet, "/users/all-users", http.StatusUnauthorized, "jwt expired")

	_, err := vm.Page(context.Background(), Filter{}, 1, 0)
	require.Error(t, err)
	assert.True(t, feedback.Unauthenticated(err))
	assert.False(t, sess.Authenticated())
}

func TestPrompt_UnknownUser(t *testing.T) {
	vm, _, _ := newVM(t)

	_, err := vm.Prompt(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPage_PicksUpServerChangesAfterStaleTime(t *testing.T) {
	srv := apitest.New(t)
	sess := srv.Session()
	log := slog.New(slog.DiscardHandler)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	set := resources.New(srv.Client(sess), log, resources.Options{
		StaleTime: time.Minute,
		Clock:     func() time.Time { return now },
	})
	vm := New(set, sess, log, 10)
	ctx := context.Background()

	page, err := vm.Page(ctx, Filter{}, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 5, page.Pagination.Total)

	srv.SetUsers([]models.User{{ID: "n1", FullName: "Newcomer", Email: "new@example.com", IsActive: true}})

	page, err = vm.Page(ctx, Filter{}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Pagination.Total)

	now = now.Add(time.Minute)
	page, err = vm.Page(ctx, Filter{}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, "Newcomer", page.Rows[0].Name)
	assert.Equal(t, 2, srv.Hits(http.MethodGet, "/users/all-users"))
}
