// Package layout строит общую шапку и боковое меню консоли.
// Шапка читает те же общие запросы уведомлений и профиля, что и их страницы.
package layout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-admin/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

// NavItem — пункт бокового меню.
type NavItem struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

var nav = []NavItem{
	{Name: "Overview", Path: "/"},
	{Name: "User Management", Path: "/user-management"},
	{Name: "Subscriptions", Path: "/subscribe"},
	{Name: "Notification", Path: "/notifications"},
	{Name: "Profile", Path: "/settings"},
}

// Header — состояние шапки.
type Header struct {
	Title string `json:"title"`
	// Count — все уведомления списка, Unread — непрочитанные из них
	Count    int       `json:"count"`
	Unread   int       `json:"unread"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Avatar   string    `json:"avatar,omitempty"`
	Initial  string    `json:"initial"`
	Nav      []NavItem `json:"nav"`
	LoggedIn bool      `json:"loggedIn"`
}

// ViewModel — логика шапки.
type ViewModel struct {
	set  *resources.Set
	sess feedback.SessionClearer
	log  *slog.Logger
}

// New создаёт модель шапки.
func New(set *resources.Set, sess feedback.SessionClearer, log *slog.Logger) *ViewModel {
	return &ViewModel{set: set, sess: sess, log: log}
}

// Header собирает шапку для пути path. Ошибки уведомлений и профиля не мешают шапке,
// кроме потери сессии.
func (vm *ViewModel) Header(ctx context.Context, path string) (Header, error) {
	const op = "viewmodel.layout.Header"
	log := vm.log.With(sl.Op(op))

	h := Header{Title: Title(path), Nav: Nav(path), Initial: "A", LoggedIn: true}

	notes := vm.set.Notifications.Load(ctx)
	if err := vm.check(notes.Status, notes.Err); err != nil {
		return Header{}, fmt.Errorf("%s: %w", op, err)
	}
	if notes.Status == query.Error {
		log.Warn("notifications unavailable for header", sl.Err(notes.Err))
	}
	h.Count = len(notes.Data.Data)
	for _, n := range notes.Data.Data {
		if !n.IsRead {
			h.Unread++
		}
	}

	profile := vm.set.Profile.Load(ctx)
	if err := vm.check(profile.Status, profile.Err); err != nil {
		return Header{}, fmt.Errorf("%s: %w", op, err)
	}
	if profile.Status == query.Error {
		log.Warn("profile unavailable for header", sl.Err(profile.Err))
	}
	if profile.HasData {
		h.Name = profile.Data.FullName
		h.Role = profile.Data.Role
		h.Avatar = vm.set.AssetURL(profile.Data.Profile)
		for _, r := range profile.Data.FullName {
			h.Initial = strings.ToUpper(string(r))
			break
		}
	}
	return h, nil
}

func (vm *ViewModel) check(status query.Status, err error) error {
	if status == query.Error && feedback.Unauthenticated(err) {
		vm.sess.Clear()
		return err
	}
	return nil
}

// Title возвращает заголовок страницы: имя пункта меню для известного пути, иначе сам путь без "/".
func Title(path string) string {
	if path == "" || path == "/" {
		return "Overview"
	}
	for _, item := range nav[1:] {
		if strings.HasPrefix(path, item.Path) {
			return item.Name
		}
	}
	return strings.TrimPrefix(path, "/")
}

// Nav возвращает меню с отмеченным активным пунктом.
func Nav(path string) []NavItem {
	out := make([]NavItem, len(nav))
	copy(out, nav)
	for i := range out {
		if out[i].Path == "/" {
			out[i].Active = path == "" || path == "/"
			continue
		}
		out[i].Active = strings.HasPrefix(path, out[i].Path)
	}
	return out
}
