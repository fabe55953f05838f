package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/zugo/transit-backend/internal/config"
	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/services"
	"github.com/zugo/transit-backend/internal/store"
	"github.com/zugo/transit-backend/internal/utils"
	"github.com/zugo/transit-backend/pkg/jwt"
	"github.com/zugo/transit-backend/pkg/mailer"
	"github.com/zugo/transit-backend/pkg/validator"
)

// Auth error codes, each mapped to a fixed user-facing message. Codes
// outside this set fall back to a generic message.
const (
	CodeEmailInUse      = "email-already-in-use"
	CodeInvalidEmail    = "invalid-email"
	CodeWeakPassword    = "weak-password"
	CodeNotAllowed      = "operation-not-allowed"
	CodeTooManyRequests = "too-many-requests"
	CodeNetworkFailure  = "network-request-failed"
	CodeUserNotFound    = "user-not-found"

	genericAuthMessage = "Something went wrong. Please try again."
)

var authErrorMessages = map[string]string{
	CodeEmailInUse:      "That email address is already in use!",
	CodeInvalidEmail:    "That email address is invalid!",
	CodeWeakPassword:    "Password should be at least 6 characters",
	CodeNotAllowed:      "Operation not allowed. Please contact support.",
	CodeTooManyRequests: "Too many attempts. Please try again later.",
	CodeNetworkFailure:  "Network error. Please check your connection.",
	CodeUserNotFound:    "No account found with that email address.",
}

// AuthErrorMessage returns the fixed user-facing message for a known
// auth error code, or the generic fallback
func AuthErrorMessage(code string) string {
	if msg, ok := authErrorMessages[code]; ok {
		return msg
	}
	return genericAuthMessage
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func authError(c *gin.Context, status int, code string) {
	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: AuthErrorMessage(code),
		Code:    code,
	})
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService    *jwt.Service
	verifications *services.VerificationService
	formValidator *validator.FormValidator
	store         *store.Store
	mailGateway   mailer.Mailer
	config        *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	verifications *services.VerificationService,
	formValidator *validator.FormValidator,
	st *store.Store,
	mailGateway mailer.Mailer,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		jwtService:    jwtService,
		verifications: verifications,
		formValidator: formValidator,
		store:         st,
		mailGateway:   mailGateway,
		config:        cfg,
	}
}

// TokenResponse carries a fresh token pair
type TokenResponse struct {
	Message      string       `json:"message"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in_seconds"`
	User         *models.User `json:"user,omitempty"`
}

// RegisterPassenger handles POST /api/v1/auth/register/passenger
func (h *AuthHandler) RegisterPassenger(c *gin.Context) {
	var req models.RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	email, phone, ok := h.validateRegistration(c, req.Name, req.Email, req.Phone, req.Password, req.ConfirmPassword, req.AcceptedTerms)
	if !ok {
		return
	}

	user := &models.User{
		ID:     uuid.New(),
		Role:   models.RolePassenger,
		Name:   req.Name,
		Email:  email,
		Phone:  phone,
		Status: "active",
	}

	h.createAccount(c, user, req.Password)
}

// RegisterTransporter handles POST /api/v1/auth/register/transporter
func (h *AuthHandler) RegisterTransporter(c *gin.Context) {
	var req models.RegisterTransporterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	email, phone, ok := h.validateRegistration(c, req.ContactName, req.Email, req.Phone, req.Password, req.ConfirmPassword, req.AcceptedTerms)
	if !ok {
		return
	}

	user := &models.User{
		ID:     uuid.New(),
		Role:   models.RoleTransporter,
		Name:   req.ContactName,
		Email:  email,
		Phone:  phone,
		Status: "active",
	}
	user.CompanyName.Valid = true
	user.CompanyName.String = req.CompanyName

	h.createAccount(c, user, req.Password)
}

// validateRegistration runs the shared form rules in the same order the
// client forms check them. On failure it writes the error response and
// returns ok=false; on success it returns the normalized email and
// sanitized phone.
func (h *AuthHandler) validateRegistration(c *gin.Context, name, rawEmail, rawPhone, password, confirm string, terms bool) (email, phone string, ok bool) {
	err := validator.FirstError(
		validator.RequireField("name", name),
		func() error {
			var vErr error
			email, vErr = h.formValidator.ValidateEmail(rawEmail)
			return vErr
		},
		func() error {
			var vErr error
			phone, vErr = h.formValidator.ValidatePhone(rawPhone)
			return vErr
		},
		func() error { return h.formValidator.ValidatePassword(password) },
		func() error { return h.formValidator.ValidatePasswordConfirmation(password, confirm) },
		func() error { return h.formValidator.ValidateTermsAccepted(terms) },
	)
	if err == nil {
		return email, phone, true
	}

	switch err {
	case validator.ErrEmptyEmail, validator.ErrInvalidEmail:
		authError(c, http.StatusBadRequest, CodeInvalidEmail)
	case validator.ErrPasswordTooShort:
		authError(c, http.StatusBadRequest, CodeWeakPassword)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
	}
	return "", "", false
}

func (h *AuthHandler) createAccount(c *gin.Context, user *models.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.config.Security.BcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "registration_failed",
			Message: genericAuthMessage,
		})
		return
	}
	user.PasswordHash = string(hash)

	if err := h.store.Users.Create(user); err != nil {
		if err == store.ErrDuplicateEmail {
			authError(c, http.StatusConflict, CodeEmailInUse)
			return
		}
		logrus.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "registration_failed",
			Message: genericAuthMessage,
		})
		return
	}

	h.sendVerificationCode(user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. A verification code was sent to your email.",
		"user":    user,
	})
}

func (h *AuthHandler) sendVerificationCode(email string) {
	code, err := h.verifications.GenerateCode(email, services.PurposeEmailVerification)
	if err != nil {
		logrus.WithError(err).WithField("email", email).Warn("Failed to generate verification code")
		return
	}

	subject, body := mailer.VerificationMessage(code, h.verifications.ExpiryMinutes())
	if _, err := h.mailGateway.Send(email, subject, body); err != nil {
		logrus.WithError(err).WithField("email", email).Warn("Failed to send verification email")
	}
}

// Login handles POST /api/v1/auth/login
//
// Credentials are always verified and the session role comes from the
// stored account, never from the client.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.store.Users.GetByEmail(req.Email)
	if err != nil {
		if err == store.ErrNotFound {
			authError(c, http.StatusUnauthorized, CodeUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "login_failed",
			Message: genericAuthMessage,
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Incorrect email or password.",
		})
		return
	}

	if user.Status != "active" {
		authError(c, http.StatusForbidden, CodeNotAllowed)
		return
	}

	if err := h.store.Users.RecordLogin(user.ID); err != nil {
		logrus.WithError(err).Warn("Failed to record login time")
	}
	h.recordSession(c, user.ID)

	h.respondWithTokens(c, user, "Login successful")
}

func (h *AuthHandler) recordSession(c *gin.Context, userID uuid.UUID) {
	device := utils.ParseUserAgent(c.Request.UserAgent())

	session := &models.UserSession{
		ID:         uuid.New(),
		UserID:     userID,
		DeviceType: device.DeviceType,
		Platform:   device.Platform,
		OS:         device.OS,
	}
	session.IPAddress.Valid = true
	session.IPAddress.String = c.ClientIP()
	session.UserAgent.Valid = true
	session.UserAgent.String = c.Request.UserAgent()

	if err := h.store.Sessions.Record(session); err != nil {
		logrus.WithError(err).Warn("Failed to record session")
	}
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, user *models.User, message string) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: genericAuthMessage,
		})
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: genericAuthMessage,
		})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Message:      message,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.config.JWT.AccessTokenExpiry / time.Second),
		User:         user,
	})
}

// RefreshTokenRequest carries a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
		})
		return
	}

	user, err := h.store.Users.GetByID(claims.UserID)
	if err != nil {
		if err == store.ErrNotFound {
			authError(c, http.StatusUnauthorized, CodeUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "refresh_failed",
			Message: genericAuthMessage,
		})
		return
	}

	if user.Status != "active" {
		authError(c, http.StatusForbidden, CodeNotAllowed)
		return
	}

	h.respondWithTokens(c, user, "Token refreshed")
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless; the
// client discards them and the active session record is deactivated
// when one is named.
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	_ = c.ShouldBindJSON(&req)

	if req.SessionID != "" {
		if sessionID, err := uuid.Parse(req.SessionID); err == nil {
			if err := h.store.Sessions.Deactivate(sessionID, userCtx.UserID); err != nil {
				logrus.WithError(err).Debug("Failed to deactivate session on logout")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.store.Users.GetByID(userCtx.UserID)
	if err != nil {
		if err == store.ErrNotFound {
			authError(c, http.StatusNotFound, CodeUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "profile_fetch_failed",
			Message: genericAuthMessage,
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	if req.Phone != nil {
		sanitized, err := h.formValidator.ValidatePhone(*req.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_failed",
				Message: err.Error(),
			})
			return
		}
		req.Phone = &sanitized
	}

	user, err := h.store.Users.UpdateProfile(userCtx.UserID, &req)
	if err != nil {
		if err == store.ErrNotFound {
			authError(c, http.StatusNotFound, CodeUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "profile_update_failed",
			Message: genericAuthMessage,
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// VerifyEmailRequest carries an email verification code
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyEmail handles POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	err := h.verifications.ValidateCode(req.Email, services.PurposeEmailVerification, req.Code)
	if err != nil {
		h.respondVerificationError(c, err)
		return
	}

	if err := h.store.Users.SetEmailVerified(req.Email); err != nil {
		if err == store.ErrNotFound {
			authError(c, http.StatusNotFound, CodeUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "verification_failed",
			Message: genericAuthMessage,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// ResendVerification handles POST /api/v1/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	code, err := h.verifications.GenerateCode(req.Email, services.PurposeEmailVerification)
	if err != nil {
		if err == services.ErrTooManyRequests {
			authError(c, http.StatusTooManyRequests, CodeTooManyRequests)
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "code_generation_failed",
			Message: genericAuthMessage,
		})
		return
	}

	subject, body := mailer.VerificationMessage(code, h.verifications.ExpiryMinutes())
	if _, err := h.mailGateway.Send(req.Email, subject, body); err != nil {
		authError(c, http.StatusBadGateway, CodeNetworkFailure)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. It always
// responds with success so account existence is not leaked.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	response := gin.H{"message": "If that email is registered, a reset code was sent."}

	exists, err := h.store.Users.EmailExists(req.Email)
	if err != nil || !exists {
		c.JSON(http.StatusOK, response)
		return
	}

	code, err := h.verifications.GenerateCode(req.Email, services.PurposePasswordReset)
	if err != nil {
		if err == services.ErrTooManyRequests {
			authError(c, http.StatusTooManyRequests, CodeTooManyRequests)
			return
		}
		c.JSON(http.StatusOK, response)
		return
	}

	subject, body := mailer.PasswordResetMessage(code, h.verifications.ExpiryMinutes())
	if _, err := h.mailGateway.Send(req.Email, subject, body); err != nil {
		logrus.WithError(err).Warn("Failed to send password reset email")
	}

	c.JSON(http.StatusOK, response)
}

// ResetPasswordRequest carries a reset code and the new password
type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required"`
	Code            string `json:"code" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	err := validator.FirstError(
		func() error { return h.formValidator.ValidatePassword(req.Password) },
		func() error { return h.formValidator.ValidatePasswordConfirmation(req.Password, req.ConfirmPassword) },
	)
	if err != nil {
		if err == validator.ErrPasswordTooShort {
			authError(c, http.StatusBadRequest, CodeWeakPassword)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	if err := h.verifications.ValidateCode(req.Email, services.PurposePasswordReset, req.Code); err != nil {
		h.respondVerificationError(c, err)
		return
	}

	user, err := h.store.Users.GetByEmail(req.Email)
	if err != nil {
		if err == store.ErrNotFound {
			authError(c, http.StatusNotFound, CodeUserNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reset_failed",
			Message: genericAuthMessage,
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reset_failed",
			Message: genericAuthMessage,
		})
		return
	}

	if err := h.store.Users.UpdatePassword(user.ID, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reset_failed",
			Message: genericAuthMessage,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated. You can now log in."})
}

// ListSessions handles GET /api/v1/auth/sessions
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sessions, err := h.store.Sessions.ListByUser(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "session_fetch_failed",
			Message: genericAuthMessage,
		})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func (h *AuthHandler) respondVerificationError(c *gin.Context, err error) {
	switch err {
	case services.ErrNoCodeFound, services.ErrCodeInvalid, services.ErrCodeAlreadyUsed:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_code",
			Message: "The verification code is invalid.",
		})
	case services.ErrCodeExpired:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "code_expired",
			Message: "The verification code has expired. Request a new one.",
		})
	case services.ErrMaxAttemptsExceeded:
		authError(c, http.StatusTooManyRequests, CodeTooManyRequests)
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "verification_failed",
			Message: genericAuthMessage,
		})
	}
}
