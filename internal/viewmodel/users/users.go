// Package users строит страницу списка пользователей: поиск, фильтры, нарезку на страницы
// и блокировку с подтверждением.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

const (
	EmptyMessage = "No users found matching your criteria."

	blockedMessage   = "User blocked successfully"
	unblockedMessage = "User unblocked successfully"
	toggleFailed     = "Failed to update user status"
)

// ErrNotFound — пользователя нет в текущем списке.
var ErrNotFound = errors.New("user not found")

// Row — строка таблицы пользователей.
type Row struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Avatar     string      `json:"avatar,omitempty"`
	Initial    string      `json:"initial"`
	Tier       models.Tier `json:"tier"`
	Status     string      `json:"status"`
	Active     bool        `json:"active"`
	JoinDate   string      `json:"joinDate"`
	LastActive string      `json:"lastActive"`
}

// Page — состояние страницы пользователей.
type Page struct {
	Rows       []Row      `json:"rows"`
	Pagination Pagination `json:"pagination"`
	Filter     Filter     `json:"filter"`
	Summary    string     `json:"summary,omitempty"`
	Empty      string     `json:"empty,omitempty"`
}

// Prompt — текст окна подтверждения блокировки.
type Prompt struct {
	UserID  string `json:"userId"`
	Block   bool   `json:"block"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Confirm string `json:"confirm"`
}

// ViewModel — логика страницы пользователей.
type ViewModel struct {
	set      *resources.Set
	sess     feedback.SessionClearer
	log      *slog.Logger
	toggle   *query.Mutation[string, models.Envelope[models.User]]
	pageSize int
	now      func() time.Time
}

// New создаёт модель страницы; pageSize — размер страницы по умолчанию.
func New(set *resources.Set, sess feedback.SessionClearer, log *slog.Logger, pageSize int) *ViewModel {
	return &ViewModel{
		set:      set,
		sess:     sess,
		log:      log,
		toggle:   query.NewMutation("users.toggle_block", set.API.Overview.ToggleBlock, log),
		pageSize: pageSize,
		now:      time.Now,
	}
}

// Page загружает общий список пользователей, применяет фильтр и возвращает страницу.
func (vm *ViewModel) Page(ctx context.Context, f Filter, page, limit int) (Page, error) {
	const op = "viewmodel.users.Page"

	st := vm.set.Users.Load(ctx)
	if st.Status == query.Error {
		feedback.Lost(vm.sess, st.Err)
		return Page{}, fmt.Errorf("%s: %w", op, st.Err)
	}
	if limit <= 0 {
		limit = vm.pageSize
	}

	filtered := Apply(st.Data, f)
	visible, pg := Paginate(filtered, page, limit)

	out := Page{
		Rows:       make([]Row, 0, len(visible)),
		Pagination: pg,
		Filter:     f,
	}
	for _, u := range visible {
		out.Rows = append(out.Rows, vm.row(u))
	}
	if len(filtered) == 0 {
		out.Empty = EmptyMessage
	} else {
		out.Summary = fmt.Sprintf("Showing %d of %d Results", len(filtered), len(st.Data))
	}
	return out, nil
}

// Prompt возвращает текст подтверждения для пользователя из текущего списка.
func (vm *ViewModel) Prompt(ctx context.Context, id string) (Prompt, error) {
	const op = "viewmodel.users.Prompt"

	st := vm.set.Users.Load(ctx)
	if st.Status == query.Error {
		feedback.Lost(vm.sess, st.Err)
		return Prompt{}, fmt.Errorf("%s: %w", op, st.Err)
	}
	for _, u := range st.Data {
		if u.ID == id {
			return Confirm(u), nil
		}
	}
	return Prompt{}, fmt.Errorf("%s: %s: %w", op, id, ErrNotFound)
}

// ToggleBlock выполняет блокировку или разблокировку и перечитывает список пользователей.
func (vm *ViewModel) ToggleBlock(ctx context.Context, id string) feedback.Outcome {
	env, err := vm.toggle.Run(ctx, id)

	success := unblockedMessage
	if err == nil && !env.Data.IsActive {
		success = blockedMessage
	}
	return feedback.AfterMutation(ctx, vm.log, vm.sess, err, env.Message,
		feedback.Messages{Success: success, Failure: toggleFailed},
		vm.set.Users, vm.set.Stats)
}

// ToggleStatus возвращает состояние мутации блокировки.
func (vm *ViewModel) ToggleStatus() query.Status {
	return vm.toggle.Status()
}

// Confirm строит текст окна подтверждения: активного пользователя блокируют, заблокированного разблокируют.
func Confirm(u models.User) Prompt {
	if u.IsActive {
		return Prompt{
			UserID:  u.ID,
			Block:   true,
			Title:   "Block User",
			Message: fmt.Sprintf("Are you sure you want to block %s? This action will restrict their access to the platform.", u.FullName),
			Confirm: "Yes, Block User",
		}
	}
	return Prompt{
		UserID:  u.ID,
		Title:   "Unblock User",
		Message: fmt.Sprintf("Are you sure you want to unblock %s? This action will restore their access to the platform.", u.FullName),
		Confirm: "Yes, Unblock User",
	}
}

func (vm *ViewModel) row(u models.User) Row {
	status := "Blocked"
	if u.IsActive {
		status = "Active"
	}
	return Row{
		ID:         u.ID,
		Name:       u.FullName,
		Email:      u.Email,
		Avatar:     vm.set.AssetURL(u.Profile),
		Initial:    initial(u.FullName),
		Tier:       u.Tier(),
		Status:     status,
		Active:     u.IsActive,
		JoinDate:   u.CreatedAt.Format("01/02/2006"),
		LastActive: LastActive(u.UpdatedAt, vm.now()),
	}
}

// LastActive форматирует давность обновления: "Just now", "Nh ago" или "Nd ago".
func LastActive(updated, now time.Time) string {
	hours := int(now.Sub(updated).Hours())
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return fmt.Sprintf("%dd ago", hours/24)
	}
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "U"
}
