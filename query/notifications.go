package query

import (
	"context"
	"fmt"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
	"github.com/campuscash/campuscash-go/services"
)

// NotificationQueries dispatches notification reads and writes by role.
// Only students and professors receive notifications; the dispatch is
// exhaustive, so a company or unknown role is an explicit error rather than
// a silent no-op.
type NotificationQueries struct {
	students   *services.StudentService
	professors *services.ProfessorService
	queries    *Client
}

// NewNotificationQueries constructs the notification wrapper.
func NewNotificationQueries(students *services.StudentService, professors *services.ProfessorService, queries *Client) *NotificationQueries {
	return &NotificationQueries{students: students, professors: professors, queries: queries}
}

func notificationsKey(role services.Role) Key {
	return K("notifications", string(role))
}

func unreadKey(role services.Role) Key {
	return K("notifications", "unread", string(role))
}

// List returns the cached notifications for the role.
func (q *NotificationQueries) List(ctx context.Context, role services.Role) ([]services.Notification, error) {
	fetch, err := q.listFunc(role)
	if err != nil {
		return nil, err
	}

	var notifications []services.Notification
	if err := q.queries.Fetch(ctx, notificationsKey(role), &notifications, fetch); err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns the cached unread counter for the role.
func (q *NotificationQueries) UnreadCount(ctx context.Context, role services.Role) (*services.UnreadCount, error) {
	var fetch FetchFunc
	switch role {
	case services.RoleStudent:
		fetch = func(ctx context.Context) (interface{}, error) { return q.students.UnreadNotificationsCount(ctx) }
	case services.RoleProfessor:
		fetch = func(ctx context.Context) (interface{}, error) { return q.professors.UnreadNotificationsCount(ctx) }
	case services.RoleCompany:
		return nil, roleHasNoNotifications(role)
	default:
		return nil, unknownRole(role)
	}

	count := &services.UnreadCount{}
	if err := q.queries.Fetch(ctx, unreadKey(role), count, fetch); err != nil {
		return nil, err
	}
	return count, nil
}

// MarkRead flags one notification as read and invalidates every cached
// notification view, unread counters included.
func (q *NotificationQueries) MarkRead(ctx context.Context, role services.Role, id int64) error {
	var call func(ctx context.Context) error
	switch role {
	case services.RoleStudent:
		call = func(ctx context.Context) error { return q.students.MarkNotificationRead(ctx, id) }
	case services.RoleProfessor:
		call = func(ctx context.Context) error { return q.professors.MarkNotificationRead(ctx, id) }
	case services.RoleCompany:
		return roleHasNoNotifications(role)
	default:
		return unknownRole(role)
	}

	_, err := q.queries.Mutate(ctx, Mutation{
		Name:        "notifications.mark_read",
		Invalidates: []Key{KeyNotifications},
	}, func(ctx context.Context) (interface{}, error) {
		return nil, call(ctx)
	})
	return err
}

// MarkAllRead flags every notification as read.
func (q *NotificationQueries) MarkAllRead(ctx context.Context, role services.Role) error {
	var call func(ctx context.Context) error
	switch role {
	case services.RoleStudent:
		call = func(ctx context.Context) error { return q.students.MarkAllNotificationsRead(ctx) }
	case services.RoleProfessor:
		call = func(ctx context.Context) error { return q.professors.MarkAllNotificationsRead(ctx) }
	case services.RoleCompany:
		return roleHasNoNotifications(role)
	default:
		return unknownRole(role)
	}

	_, err := q.queries.Mutate(ctx, Mutation{
		Name:        "notifications.mark_all_read",
		Invalidates: []Key{KeyNotifications, K("notifications", "unread")},
	}, func(ctx context.Context) (interface{}, error) {
		return nil, call(ctx)
	})
	return err
}

func (q *NotificationQueries) listFunc(role services.Role) (FetchFunc, error) {
	switch role {
	case services.RoleStudent:
		return func(ctx context.Context) (interface{}, error) { return q.students.Notifications(ctx) }, nil
	case services.RoleProfessor:
		return func(ctx context.Context) (interface{}, error) { return q.professors.Notifications(ctx) }, nil
	case services.RoleCompany:
		return nil, roleHasNoNotifications(role)
	default:
		return nil, unknownRole(role)
	}
}

func roleHasNoNotifications(role services.Role) error {
	return apperrors.New(apperrors.ErrValidation.Code, apperrors.ErrValidation.Status,
		fmt.Sprintf("role %q has no notification feed", string(role)))
}

func unknownRole(role services.Role) error {
	return apperrors.New(apperrors.ErrValidation.Code, apperrors.ErrValidation.Status,
		fmt.Sprintf("unknown role %q", string(role)))
}
