package models

import "time"

// NotificationType categorizes a notification for the client UI
type NotificationType string

const (
	NotificationTypeTrip        NotificationType = "trip"
	NotificationTypeMaintenance NotificationType = "maintenance"
	NotificationTypeAccount     NotificationType = "account"
	NotificationTypeSystem      NotificationType = "system"
)

// Notification represents an in-app notification for a user
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
