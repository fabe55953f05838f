package database

import (
	"fmt"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Add creates a new notification for a user
func (r *NotificationRepository) Add(notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, read)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		query,
		notification.ID, notification.UserID, notification.Type,
		notification.Title, notification.Message, notification.Read,
	).Scan(&notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// List retrieves a user's notifications, newest first
func (r *NotificationRepository) List(userID string) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	notifications := []models.Notification{}
	if err := r.db.Select(&notifications, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one notification read, scoped to its owner
func (r *NotificationRepository) MarkRead(id, userID string) error {
	query := `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every notification for the user read
func (r *NotificationRepository) MarkAllRead(userID string) error {
	query := `UPDATE notifications SET read = true WHERE user_id = $1`

	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Dismiss deletes a notification, scoped to its owner
func (r *NotificationRepository) Dismiss(id, userID string) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to dismiss notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
