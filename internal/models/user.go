package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// Role determines which API surface a session may use
type Role string

const (
	RolePassenger   Role = "passenger"
	RoleDriver      Role = "driver"
	RoleTransporter Role = "transporter"
)

// ValidRole reports whether the given string is a known role
func ValidRole(s string) bool {
	switch Role(s) {
	case RolePassenger, RoleDriver, RoleTransporter:
		return true
	}
	return false
}

// User represents an account in the system. Passengers and transporters
// register themselves; driver accounts are created by a transporter.
type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Role          Role       `json:"role" db:"role"`
	Name          string     `json:"name" db:"name"`
	CompanyName   NullString `json:"company_name,omitempty" db:"company_name"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	Status        string     `json:"status" db:"status"`
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	PhoneVerified bool       `json:"phone_verified" db:"phone_verified"`
	LastLoginAt   NullTime   `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// UserSession represents a logged-in device for a user
type UserSession struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	DeviceType   string     `json:"device_type" db:"device_type"`
	Platform     string     `json:"platform" db:"platform"`
	OS           string     `json:"os" db:"os"`
	IPAddress    NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent    NullString `json:"user_agent,omitempty" db:"user_agent"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastActiveAt time.Time  `json:"last_active_at" db:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// EmailVerification represents a pending email verification code
type EmailVerification struct {
	ID          int64     `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	Code        string    `json:"-" db:"code"` // Never expose in JSON
	Purpose     string    `json:"purpose" db:"purpose"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	Verified    bool      `json:"verified" db:"verified"`
	VerifiedAt  NullTime  `json:"verified_at,omitempty" db:"verified_at"`
	Attempts    int       `json:"attempts" db:"attempts"`
	MaxAttempts int       `json:"max_attempts" db:"max_attempts"`
}

// RegisterPassengerRequest is the payload for passenger registration
type RegisterPassengerRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	AcceptedTerms   bool   `json:"accepted_terms"`
}

// RegisterTransporterRequest is the payload for transporter registration
type RegisterTransporterRequest struct {
	CompanyName     string `json:"company_name" binding:"required"`
	ContactName     string `json:"contact_name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	AcceptedTerms   bool   `json:"accepted_terms"`
}

// LoginRequest is the payload for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries optional profile field updates
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// Validate validates the UpdateProfileRequest
func (req *UpdateProfileRequest) Validate() error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if req.Name == nil && req.CompanyName == nil && req.Phone == nil {
		return errors.New("no fields to update")
	}
	return nil
}
