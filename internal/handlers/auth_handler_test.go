package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zugo/transit-backend/internal/config"
	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/services"
	"github.com/zugo/transit-backend/internal/store"
	"github.com/zugo/transit-backend/pkg/jwt"
	"github.com/zugo/transit-backend/pkg/validator"
)

// recordingMailer captures outgoing messages for assertions
type recordingMailer struct {
	mu       sync.Mutex
	messages []recordedMessage
}

type recordedMessage struct {
	To      string
	Subject string
	Body    string
}

func (m *recordingMailer) Send(to, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, recordedMessage{To: to, Subject: subject, Body: body})
	return fmt.Sprintf("test-%d", len(m.messages)), nil
}

func (m *recordingMailer) GetName() string { return "recording" }

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

type authTestEnv struct {
	router        *gin.Engine
	store         *store.Store
	mailer        *recordingMailer
	verifications *services.VerificationService
	jwtService    *jwt.Service
}

func setupAuthTest(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	mail := &recordingMailer{}
	verifications := services.NewVerificationService(services.DefaultVerificationConfig())
	jwtService := jwt.NewService("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)

	cfg := &config.Config{
		JWT:      config.JWTConfig{AccessTokenExpiry: time.Hour},
		Security: config.SecurityConfig{BcryptCost: 4},
	}

	handler := NewAuthHandler(jwtService, verifications, validator.NewFormValidator(), st, mail, cfg)

	router := gin.New()
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register/passenger", handler.RegisterPassenger)
		auth.POST("/register/transporter", handler.RegisterTransporter)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.RefreshToken)
		auth.POST("/verify-email", handler.VerifyEmail)
		auth.POST("/forgot-password", handler.ForgotPassword)
		auth.POST("/reset-password", handler.ResetPassword)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		{
			protected.POST("/logout", handler.Logout)
			protected.GET("/profile", handler.GetProfile)
			protected.PATCH("/profile", handler.UpdateProfile)
			protected.GET("/sessions", handler.ListSessions)
		}
	}

	return &authTestEnv{
		router:        router,
		store:         st,
		mailer:        mail,
		verifications: verifications,
		jwtService:    jwtService,
	}
}

func (env *authTestEnv) post(path string, payload interface{}, headers ...string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func validPassengerPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":             "John Doe",
		"email":            "john.doe@example.com",
		"phone":            "0771234567",
		"password":         "secret123",
		"confirm_password": "secret123",
		"accepted_terms":   true,
	}
}

func TestRegisterPassenger(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupAuthTest(t)

		w := env.post("/api/v1/auth/register/passenger", validPassengerPayload())

		assert.Equal(t, http.StatusCreated, w.Code)

		user, err := env.store.Users.GetByEmail("john.doe@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.RolePassenger, user.Role)
		assert.Equal(t, "John Doe", user.Name)
		assert.Equal(t, "0771234567", user.Phone)
		assert.False(t, user.EmailVerified)

		// exactly one verification email went out
		assert.Equal(t, 1, env.mailer.count())
		assert.Equal(t, "john.doe@example.com", env.mailer.messages[0].To)
	})

	t.Run("Normalizes Email And Phone", func(t *testing.T) {
		env := setupAuthTest(t)

		payload := validPassengerPayload()
		payload["email"] = "  John.Doe@Example.COM "
		payload["phone"] = "+94 77-123-4567"
		w := env.post("/api/v1/auth/register/passenger", payload)

		assert.Equal(t, http.StatusCreated, w.Code)

		user, err := env.store.Users.GetByEmail("john.doe@example.com")
		require.NoError(t, err)
		assert.Equal(t, "94771234567", user.Phone)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		env := setupAuthTest(t)

		first := env.post("/api/v1/auth/register/passenger", validPassengerPayload())
		require.Equal(t, http.StatusCreated, first.Code)

		second := env.post("/api/v1/auth/register/passenger", validPassengerPayload())
		assert.Equal(t, http.StatusConflict, second.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
		assert.Equal(t, CodeEmailInUse, resp.Code)
		assert.Equal(t, "That email address is already in use!", resp.Message)
	})

	t.Run("Invalid Email", func(t *testing.T) {
		env := setupAuthTest(t)

		payload := validPassengerPayload()
		payload["email"] = "not-an-email"
		w := env.post("/api/v1/auth/register/passenger", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, CodeInvalidEmail, resp.Code)
	})

	t.Run("Weak Password", func(t *testing.T) {
		env := setupAuthTest(t)

		payload := validPassengerPayload()
		payload["password"] = "abc"
		payload["confirm_password"] = "abc"
		w := env.post("/api/v1/auth/register/passenger", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, CodeWeakPassword, resp.Code)
	})

	t.Run("Password Mismatch", func(t *testing.T) {
		env := setupAuthTest(t)

		payload := validPassengerPayload()
		payload["confirm_password"] = "different1"
		w := env.post("/api/v1/auth/register/passenger", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "passwords do not match")
	})

	t.Run("Terms Not Accepted", func(t *testing.T) {
		env := setupAuthTest(t)

		payload := validPassengerPayload()
		payload["accepted_terms"] = false
		w := env.post("/api/v1/auth/register/passenger", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "terms")
	})
}

func TestRegisterTransporter(t *testing.T) {
	env := setupAuthTest(t)

	w := env.post("/api/v1/auth/register/transporter", map[string]interface{}{
		"company_name":     "Metro Line Transit",
		"contact_name":     "Dinesh Perera",
		"email":            "ops@metroline.lk",
		"phone":            "0112345678",
		"password":         "secret123",
		"confirm_password": "secret123",
		"accepted_terms":   true,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	user, err := env.store.Users.GetByEmail("ops@metroline.lk")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTransporter, user.Role)
	assert.True(t, user.CompanyName.Valid)
	assert.Equal(t, "Metro Line Transit", user.CompanyName.String)
}

func registerAndGetUser(t *testing.T, env *authTestEnv) *models.User {
	t.Helper()
	w := env.post("/api/v1/auth/register/passenger", validPassengerPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	user, err := env.store.Users.GetByEmail("john.doe@example.com")
	require.NoError(t, err)
	return user
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupAuthTest(t)
		registerAndGetUser(t, env)

		w := env.post("/api/v1/auth/login", map[string]string{
			"email":    "john.doe@example.com",
			"password": "secret123",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		require.NotNil(t, resp.User)

		// the session role comes from the stored account
		claims, err := env.jwtService.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, string(models.RolePassenger), claims.Role)

		sessions, err := env.store.Sessions.ListByUser(resp.User.ID)
		require.NoError(t, err)
		assert.Len(t, sessions, 1)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		env := setupAuthTest(t)
		registerAndGetUser(t, env)

		w := env.post("/api/v1/auth/login", map[string]string{
			"email":    "john.doe@example.com",
			"password": "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_credentials")
	})

	t.Run("Unknown Email", func(t *testing.T) {
		env := setupAuthTest(t)

		w := env.post("/api/v1/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "secret123",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, CodeUserNotFound, resp.Code)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupAuthTest(t)
		user := registerAndGetUser(t, env)

		refreshToken, err := env.jwtService.GenerateRefreshToken(user.ID, user.Email)
		require.NoError(t, err)

		w := env.post("/api/v1/auth/refresh", map[string]string{"refresh_token": refreshToken})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)

		claims, err := env.jwtService.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		env := setupAuthTest(t)
		user := registerAndGetUser(t, env)

		accessToken, err := env.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
		require.NoError(t, err)

		w := env.post("/api/v1/auth/refresh", map[string]string{"refresh_token": accessToken})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestVerifyEmail(t *testing.T) {
	env := setupAuthTest(t)
	registerAndGetUser(t, env)

	// regenerating replaces the code issued at registration
	code, err := env.verifications.GenerateCode("john.doe@example.com", services.PurposeEmailVerification)
	require.NoError(t, err)

	w := env.post("/api/v1/auth/verify-email", map[string]string{
		"email": "john.doe@example.com",
		"code":  code,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	user, err := env.store.Users.GetByEmail("john.doe@example.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
}

func TestVerifyEmail_WrongCode(t *testing.T) {
	env := setupAuthTest(t)
	registerAndGetUser(t, env)

	w := env.post("/api/v1/auth/verify-email", map[string]string{
		"email": "john.doe@example.com",
		"code":  "000000",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_code")

	user, err := env.store.Users.GetByEmail("john.doe@example.com")
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)
}

func TestForgotPassword_DoesNotLeakAccounts(t *testing.T) {
	env := setupAuthTest(t)

	w := env.post("/api/v1/auth/forgot-password", map[string]string{
		"email": "nobody@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.mailer.count())
}

func TestResetPassword_FullFlow(t *testing.T) {
	env := setupAuthTest(t)
	registerAndGetUser(t, env)

	w := env.post("/api/v1/auth/forgot-password", map[string]string{
		"email": "john.doe@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	code, err := env.verifications.GenerateCode("john.doe@example.com", services.PurposePasswordReset)
	require.NoError(t, err)

	w = env.post("/api/v1/auth/reset-password", map[string]string{
		"email":            "john.doe@example.com",
		"code":             code,
		"password":         "newsecret456",
		"confirm_password": "newsecret456",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// old password no longer works
	w = env.post("/api/v1/auth/login", map[string]string{
		"email":    "john.doe@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// new one does
	w = env.post("/api/v1/auth/login", map[string]string{
		"email":    "john.doe@example.com",
		"password": "newsecret456",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProfile(t *testing.T) {
	env := setupAuthTest(t)
	user := registerAndGetUser(t, env)

	token, err := env.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var fetched models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, user.ID, fetched.ID)
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestUpdateProfile(t *testing.T) {
	env := setupAuthTest(t)
	user := registerAndGetUser(t, env)

	token, err := env.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"name": "Johnathan Doe", "phone": "077-999-8877 0"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/auth/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	updated, err := env.store.Users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Johnathan Doe", updated.Name)
	assert.Equal(t, "07799988770", updated.Phone)
}
