package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. The email must not already be registered.
func (r *UserRepository) Create(user *models.User) error {
	exists, err := r.EmailExists(user.Email)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrDuplicateEmail
	}

	query := `
		INSERT INTO users (
			id, role, name, company_name, email, phone,
			password_hash, status, email_verified, phone_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err = r.db.QueryRow(
		query,
		user.ID, user.Role, user.Name, user.CompanyName, strings.ToLower(user.Email),
		user.Phone, user.PasswordHash, user.Status, user.EmailVerified, user.PhoneVerified,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	query := `
		SELECT
			id, role, name, company_name, email, phone,
			password_hash, status, email_verified, phone_verified,
			last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.Get(user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT
			id, role, name, company_name, email, phone,
			password_hash, status, email_verified, phone_verified,
			last_login_at, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	user := &models.User{}
	err := r.db.Get(user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// EmailExists checks whether an account with the email already exists
func (r *UserRepository) EmailExists(email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`

	var exists bool
	if err := r.db.QueryRow(query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates the mutable profile fields of a user
func (r *UserRepository) UpdateProfile(id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	updates := []string{}
	args := []interface{}{}
	argCount := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *req.Name)
		argCount++
	}

	if req.CompanyName != nil {
		updates = append(updates, fmt.Sprintf("company_name = $%d", argCount))
		if *req.CompanyName == "" {
			args = append(args, nil)
		} else {
			args = append(args, *req.CompanyName)
		}
		argCount++
	}

	if req.Phone != nil {
		updates = append(updates, fmt.Sprintf("phone = $%d", argCount))
		args = append(args, *req.Phone)
		argCount++
	}

	if len(updates) == 0 {
		return r.GetByID(id)
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE id = $%d",
		strings.Join(updates, ", "), argCount,
	)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return r.GetByID(id)
}

// SetEmailVerified marks the account with the email as verified
func (r *UserRepository) SetEmailVerified(email string) error {
	query := `UPDATE users SET email_verified = true, updated_at = NOW() WHERE LOWER(email) = LOWER($1)`

	result, err := r.db.Exec(query, email)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
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

// UpdatePassword replaces the user's password hash
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.Exec(query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
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

// RecordLogin stamps the user's last login time
func (r *UserRepository) RecordLogin(id uuid.UUID) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
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
