package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email address cannot be empty")

	// ErrInvalidEmail indicates the email address is not syntactically valid
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrEmptyPhone indicates the phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidPhoneFormat indicates the phone number contains invalid characters
	ErrInvalidPhoneFormat = errors.New("phone number can only contain digits")

	// ErrInvalidPhoneLength indicates the phone number is outside 10-15 digits
	ErrInvalidPhoneLength = errors.New("phone number must be 10 to 15 digits")

	// ErrPasswordTooShort indicates the password is below 6 characters
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrPasswordMismatch indicates password and confirmation differ
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrTermsNotAccepted indicates the terms checkbox was not accepted
	ErrTermsNotAccepted = errors.New("you must accept the terms and conditions")
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitsRegex = regexp.MustCompile(`^\d+$`)
)

// Rule is a single form validation check
type Rule func() error

// FirstError runs rules in order and returns the first failure, mirroring
// how the client forms surface only the first violated rule.
func FirstError(rules ...Rule) error {
	for _, rule := range rules {
		if err := rule(); err != nil {
			return err
		}
	}
	return nil
}

// FormValidator validates the field formats used by registration and
// profile forms.
type FormValidator struct{}

// NewFormValidator creates a new form validator instance
func NewFormValidator() *FormValidator {
	return &FormValidator{}
}

// ValidateEmail validates and normalizes an email address.
// Returns the normalized (trimmed, lowercased) address.
func (v *FormValidator) ValidateEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrEmptyEmail
	}
	if !emailRegex.MatchString(normalized) {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// ValidatePhone validates a phone number.
// Accepts separators (spaces, dashes, parentheses, leading +) and returns
// the sanitized digits-only form, which must be 10 to 15 digits long.
func (v *FormValidator) ValidatePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.SanitizePhone(phone)
	if !digitsRegex.MatchString(sanitized) {
		return "", ErrInvalidPhoneFormat
	}
	if len(sanitized) < 10 || len(sanitized) > 15 {
		return "", ErrInvalidPhoneLength
	}
	return sanitized, nil
}

// SanitizePhone removes common separators from a phone number
func (v *FormValidator) SanitizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "")
	return replacer.Replace(phone)
}

// ValidatePassword checks the minimum password length
func (v *FormValidator) ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidatePasswordConfirmation checks that password and confirmation match.
// The mismatch check runs regardless of whether either value is individually
// valid.
func (v *FormValidator) ValidatePasswordConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidateTermsAccepted checks the terms acceptance flag
func (v *FormValidator) ValidateTermsAccepted(accepted bool) error {
	if !accepted {
		return ErrTermsNotAccepted
	}
	return nil
}

// RequireField returns a Rule that fails when value is blank
func RequireField(name, value string) Rule {
	return func() error {
		if strings.TrimSpace(value) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
