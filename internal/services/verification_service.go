package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/zugo/transit-backend/internal/models"
)

// Verification code purposes
const (
	PurposeEmailVerification = "email_verification"
	PurposePasswordReset     = "password_reset"
)

var (
	// ErrCodeExpired indicates the verification code has expired
	ErrCodeExpired = fmt.Errorf("verification code has expired")

	// ErrCodeInvalid indicates the verification code is incorrect
	ErrCodeInvalid = fmt.Errorf("invalid verification code")

	// ErrMaxAttemptsExceeded indicates too many failed validation attempts
	ErrMaxAttemptsExceeded = fmt.Errorf("maximum verification attempts exceeded")

	// ErrNoCodeFound indicates no pending code exists for the email
	ErrNoCodeFound = fmt.Errorf("no verification code found for this email")

	// ErrCodeAlreadyUsed indicates the code has already been validated
	ErrCodeAlreadyUsed = fmt.Errorf("verification code has already been used")

	// ErrTooManyRequests indicates the email hit the code request rate limit
	ErrTooManyRequests = fmt.Errorf("too many verification code requests")
)

// VerificationConfig controls code generation and validation limits
type VerificationConfig struct {
	CodeLength  int
	Expiry      time.Duration
	MaxAttempts int

	// RateLimit codes per RateWindow per email
	RateLimit  int
	RateWindow time.Duration
}

// DefaultVerificationConfig returns the default verification limits
func DefaultVerificationConfig() VerificationConfig {
	return VerificationConfig{
		CodeLength:  6,
		Expiry:      5 * time.Minute,
		MaxAttempts: 3,
		RateLimit:   3,
		RateWindow:  10 * time.Minute,
	}
}

// VerificationService issues and validates short-lived email codes for
// account verification and password resets. Codes are held in memory:
// a restart invalidates all pending codes, which only forces the user
// to request a fresh one.
type VerificationService struct {
	mu       sync.Mutex
	config   VerificationConfig
	pending  map[string]*models.EmailVerification
	requests map[string][]time.Time
}

// NewVerificationService creates a verification service
func NewVerificationService(config VerificationConfig) *VerificationService {
	return &VerificationService{
		config:   config,
		pending:  make(map[string]*models.EmailVerification),
		requests: make(map[string][]time.Time),
	}
}

// GenerateCode issues a new code for the email and purpose, replacing
// any pending code for the same pair
func (s *VerificationService) GenerateCode(email, purpose string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	key := codeKey(email, purpose)

	if !s.allowRequest(key) {
		return "", ErrTooManyRequests
	}

	code, err := randomCode(s.config.CodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := time.Now()
	s.pending[key] = &models.EmailVerification{
		Email:       email,
		Code:        code,
		Purpose:     purpose,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.config.Expiry),
		Attempts:    0,
		MaxAttempts: s.config.MaxAttempts,
	}

	return code, nil
}

// ValidateCode checks a submitted code. A successful validation consumes
// the code; failed attempts are counted against MaxAttempts.
func (s *VerificationService) ValidateCode(email, purpose, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	key := codeKey(email, purpose)

	record, ok := s.pending[key]
	if !ok {
		return ErrNoCodeFound
	}

	if record.Verified {
		return ErrCodeAlreadyUsed
	}

	if time.Now().After(record.ExpiresAt) {
		delete(s.pending, key)
		return ErrCodeExpired
	}

	if record.Attempts >= record.MaxAttempts {
		return ErrMaxAttemptsExceeded
	}

	record.Attempts++

	if record.Code != code {
		return ErrCodeInvalid
	}

	record.Verified = true
	record.VerifiedAt.Valid = true
	record.VerifiedAt.Time = time.Now()
	delete(s.pending, key)
	return nil
}

// ExpiryMinutes reports the configured code lifetime in whole minutes,
// for use in outgoing messages
func (s *VerificationService) ExpiryMinutes() int {
	return int(s.config.Expiry / time.Minute)
}

// allowRequest must be called with the mutex held
func (s *VerificationService) allowRequest(key string) bool {
	now := time.Now()
	cutoff := now.Add(-s.config.RateWindow)

	recent := []time.Time{}
	for _, at := range s.requests[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= s.config.RateLimit {
		s.requests[key] = recent
		return false
	}

	s.requests[key] = append(recent, now)
	return true
}

func codeKey(email, purpose string) string {
	return email + ":" + purpose
}

// randomCode generates a cryptographically secure random numeric code
func randomCode(length int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < length; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
