// Package notifications строит страницу уведомлений администратора.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-admin/internal/models"
	"github.com/magabrotheeeer/subscription-admin/internal/query"
	"github.com/magabrotheeeer/subscription-admin/internal/resources"
	"github.com/magabrotheeeer/subscription-admin/internal/viewmodel/feedback"
)

const EmptyMessage = "No notifications found"

var (
	readAllMessages = feedback.Messages{Success: "All notifications marked as read", Failure: "Failed to mark all as read", Fixed: true}
	deleteMessages  = feedback.Messages{Success: "Notification deleted successfully", Failure: "Failed to delete notification", Fixed: true}
)

// Row — строка списка уведомлений.
type Row struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Read    bool   `json:"read"`
	State   string `json:"state"`
}

// Page — состояние страницы уведомлений.
type Page struct {
	Rows       []Row  `json:"rows"`
	Total      int    `json:"total"`
	TotalLabel string `json:"totalLabel"`
	Unread     int    `json:"unread"`
	CanReadAll bool   `json:"canReadAll"`
	Empty      string `json:"empty,omitempty"`
}

// ViewModel — логика страницы уведомлений.
type ViewModel struct {
	set     *resources.Set
	sess    feedback.SessionClearer
	log     *slog.Logger
	loc     *time.Location
	readAll *query.Mutation[struct{}, models.Envelope[struct{}]]
	remove  *query.Mutation[string, models.Envelope[struct{}]]
}

// New создаёт модель страницы; loc — часовой пояс отображения, nil означает UTC.
func New(set *resources.Set, sess feedback.SessionClearer, log *slog.Logger, loc *time.Location) *ViewModel {
	if loc == nil {
		loc = time.UTC
	}
	return &ViewModel{
		set:  set,
		sess: sess,
		log:  log,
		loc:  loc,
		readAll: query.NewMutation("notifications.read_all", func(ctx context.Context, _ struct{}) (models.Envelope[struct{}], error) {
			return set.API.Notifications.ReadAll(ctx)
		}, log),
		remove: query.NewMutation("notifications.delete", set.API.Notifications.Delete, log),
	}
}

// Page возвращает список уведомлений; всего берётся из meta, иначе по длине списка.
func (vm *ViewModel) Page(ctx context.Context) (Page, error) {
	const op = "viewmodel.notifications.Page"

	st := vm.set.Notifications.Load(ctx)
	if st.Status == query.Error {
		feedback.Lost(vm.sess, st.Err)
		return Page{}, fmt.Errorf("%s: %w", op, st.Err)
	}

	items := st.Data.Data
	page := Page{Rows: make([]Row, 0, len(items)), Total: len(items)}
	if st.Data.Meta != nil {
		page.Total = st.Data.Meta.Total
	}
	for _, n := range items {
		page.Rows = append(page.Rows, vm.row(n))
		if !n.IsRead {
			page.Unread++
		}
	}
	page.TotalLabel = TotalLabel(page.Total)
	page.CanReadAll = len(items) > 0
	if len(items) == 0 {
		page.Empty = EmptyMessage
	}
	return page, nil
}

// ReadAll помечает все уведомления прочитанными и перечитывает список.
func (vm *ViewModel) ReadAll(ctx context.Context) feedback.Outcome {
	_, err := vm.readAll.Run(ctx, struct{}{})
	return feedback.AfterMutation(ctx, vm.log, vm.sess, err, "", readAllMessages, vm.set.Notifications)
}

// Delete удаляет уведомление и перечитывает список.
func (vm *ViewModel) Delete(ctx context.Context, id string) feedback.Outcome {
	if id == "" {
		return feedback.Rejected("notifications.delete", "field ID is a required field")
	}
	_, err := vm.remove.Run(ctx, id)
	return feedback.AfterMutation(ctx, vm.log, vm.sess, err, "", deleteMessages, vm.set.Notifications)
}

// TotalLabel возвращает "1 notification" или "N notifications".
func TotalLabel(n int) string {
	if n == 1 {
		return "1 notification"
	}
	return fmt.Sprintf("%d notifications", n)
}

func (vm *ViewModel) row(n models.Notification) Row {
	at := n.CreatedAt.In(vm.loc)
	state := "Unread"
	if n.IsRead {
		state = "Read"
	}
	return Row{
		ID:      n.ID,
		Message: n.Message,
		Type:    n.Type,
		Date:    at.Format("1/2/2006"),
		Time:    at.Format("03:04 PM"),
		Read:    n.IsRead,
		State:   state,
	}
}
