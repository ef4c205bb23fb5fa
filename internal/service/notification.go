package service

import (
	"context"
	"database/sql"
	"errors"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) ListNotifications(ctx context.Context, recipientID int32) ([]domain.Notification, error) {
	return s.noteRepo.ListByRecipient(ctx, recipientID)
}

// MarkAsRead and DeleteNotification are recipient scoped: acting on another
// user's notification reads as not found, never as forbidden.
func (s *notificationService) MarkAsRead(ctx context.Context, id, recipientID int32) error {
	if err := s.noteRepo.MarkAsRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("notification not found")
		}
		return err
	}
	return nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, id, recipientID int32) error {
	if err := s.noteRepo.Delete(ctx, id, recipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("notification not found")
		}
		return err
	}
	return nil
}
