package repository

import (
	"context"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository defines data access for per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	CreateBatch(ctx context.Context, notifications []model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Create(notification).Error
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&notifications).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	db := GetDB(ctx, r.db)
	if err := db.First(&notification, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	notification.IsRead = true
	if err := db.Save(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}
