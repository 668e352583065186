package services

import (
	"log"

	"gorm.io/gorm"

	"clockwork-server/models"
)

// PushSender pushes a notification to a connected client. Implemented by the
// websocket hub; nil when running without live push.
type PushSender interface {
	SendNotification(userID uint, title, message, notificationType string) bool
}

// NotificationService persists notifications and pushes them to connected
// clients. Delivery is best-effort: failures are logged, never returned to
// the transactional core.
type NotificationService struct {
	db     *gorm.DB
	pusher PushSender
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB, pusher PushSender) *NotificationService {
	return &NotificationService{db: db, pusher: pusher}
}

var _ Notifier = (*NotificationService)(nil)

// Notify stores the notification and attempts a live push.
func (s *NotificationService) Notify(userID uint, title, message, notificationType string) {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("⚠️ Failed to persist notification for user %d: %v", userID, err)
		return
	}

	if s.pusher != nil {
		if delivered := s.pusher.SendNotification(userID, title, message, notificationType); !delivered {
			log.Printf("📴 User %d not connected, notification stored only", userID)
		}
	}
}

// List returns the user's notifications, most recent first.
func (s *NotificationService) List(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// UnreadCount returns how many notifications the user has not read.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification as read; the notification must belong to
// the user.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks all the user's notifications as read.
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
