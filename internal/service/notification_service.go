package service

import (
	"context"

	"github.com/splitbook/backend/internal/middleware"
	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// notificationsLimit bounds the notification feed.
const notificationsLimit = 50

// NotificationService exposes a user's notification feed. All operations are
// scoped to the authenticated recipient.
type NotificationService struct {
	storage storage.Store
}

// NewNotificationService creates a notification service.
func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{storage: store}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context) ([]*models.Notification, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	return s.storage.ListNotifications(ctx, actorID, notificationsLimit)
}

// UnreadCount returns how many of the caller's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return 0, ErrUnauthenticated
	}
	return s.storage.CountUnreadNotifications(ctx, actorID)
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return ErrUnauthenticated
	}
	return s.storage.MarkNotificationRead(ctx, id, actorID)
}

// MarkAllRead marks every notification of the caller as read.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return ErrUnauthenticated
	}
	return s.storage.MarkAllNotificationsRead(ctx, actorID)
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return ErrUnauthenticated
	}
	return s.storage.DeleteNotification(ctx, id, actorID)
}

// DeleteAll clears the caller's feed and returns how many were removed.
func (s *NotificationService) DeleteAll(ctx context.Context) (int, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return 0, ErrUnauthenticated
	}
	return s.storage.DeleteAllNotifications(ctx, actorID)
}

// DeleteRead removes the caller's read notifications and returns how many
// were removed.
func (s *NotificationService) DeleteRead(ctx context.Context) (int, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return 0, ErrUnauthenticated
	}
	return s.storage.DeleteReadNotifications(ctx, actorID)
}
