package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// SessionRepository handles user session database operations
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Record stores a new active session for a logged-in device
func (r *SessionRepository) Record(session *models.UserSession) error {
	session.IsActive = true

	query := `
		INSERT INTO user_sessions (
			id, user_id, device_type, platform, os,
			ip_address, user_agent, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, last_active_at
	`

	err := r.db.QueryRow(
		query,
		session.ID, session.UserID, session.DeviceType, session.Platform, session.OS,
		session.IPAddress, session.UserAgent, session.IsActive,
	).Scan(&session.CreatedAt, &session.LastActiveAt)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	return nil
}

// ListByUser retrieves all sessions for a user, newest first
func (r *SessionRepository) ListByUser(userID uuid.UUID) ([]models.UserSession, error) {
	query := `
		SELECT
			id, user_id, device_type, platform, os,
			ip_address, user_agent, is_active, last_active_at, created_at
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	sessions := []models.UserSession{}
	if err := r.db.Select(&sessions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Deactivate marks a session inactive, scoped to its owner
func (r *SessionRepository) Deactivate(id, userID uuid.UUID) error {
	query := `UPDATE user_sessions SET is_active = false WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
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
