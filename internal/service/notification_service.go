package service

import (
	"context"

	"lms-backend/internal/model"
)

type NotificationService struct {
	notifications NotificationStore
}

func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) ListAll(ctx context.Context) ([]model.Notification, error) {
	return s.notifications.List(ctx)
}

// MarkRead flips the status and returns the refreshed list, which is what
// the admin dashboard re-renders from.
func (s *NotificationService) MarkRead(ctx context.Context, id string) ([]model.Notification, error) {
	notification, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if notification.Status != model.NotificationRead {
		if err := s.notifications.UpdateStatus(ctx, id, model.NotificationRead); err != nil {
			return nil, err
		}
	}

	return s.notifications.List(ctx)
}
