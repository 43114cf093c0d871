package service

import (
	"context"

	"rps-backend/app/model"
	"rps-backend/app/repository"
)

// NotificationService adalah inbox milik pemanggil.
type NotificationService interface {
	List(ctx context.Context, p model.Principal, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, p model.Principal, id string) error
}

type notificationService struct {
	inbox repository.NotificationRepository
}

func NewNotificationService(inbox repository.NotificationRepository) NotificationService {
	return &notificationService{inbox: inbox}
}

func (s *notificationService) List(ctx context.Context, p model.Principal, unreadOnly bool) ([]model.Notification, error) {
	return s.inbox.ListByUser(ctx, p.ID, unreadOnly)
}

// MarkRead: notifikasi milik user lain diperlakukan sama dengan tidak ada.
func (s *notificationService) MarkRead(ctx context.Context, p model.Principal, id string) error {
	return notFoundOr(s.inbox.MarkRead(ctx, p.ID, id), "notifikasi")
}
