package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService stores in-app notifications and pushes them to open
// websocket sessions.
type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, message, link string) error
	NotifyMany(ctx context.Context, userIDs []uuid.UUID, message, link string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	hub  *websocket.Hub
}

func NewNotificationService(repo repository.NotificationRepository, hub *websocket.Hub) NotificationService {
	return &notificationService{repo: repo, hub: hub}
}

func (s *notificationService) push(notification *model.Notification) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		log.Println("failed to marshal notification for push:", err)
		return
	}
	s.hub.SendToUser(notification.UserID, payload)
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, message, link string) error {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.push(notification)
	return nil
}

func (s *notificationService) NotifyMany(ctx context.Context, userIDs []uuid.UUID, message, link string) error {
	if len(userIDs) == 0 {
		return nil
	}
	notifications := make([]model.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		notifications = append(notifications, model.Notification{
			UserID:  id,
			Message: message,
			Link:    link,
		})
	}
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	for i := range notifications {
		s.push(&notifications[i])
	}
	return nil
}

func (s *notificationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: notification", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}

func (s *notificationService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	return count, nil
}
