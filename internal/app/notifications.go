package service

import (
	"context"
	"strings"

	"github.com/okian/bidhub/internal/domain/model"
)

// ListNotifications returns a user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	const op = "list notifications"

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fail(op, ErrInvalidInput, "userId is required")
	}
	ns, err := s.store.ListNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	return ns, nil
}

// MarkNotificationRead flags one notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	n, err := s.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return nil, wrap("mark notification read", "Notification not found", err)
	}
	return n, nil
}
