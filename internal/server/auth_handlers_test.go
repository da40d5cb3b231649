package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pro-power/polishr-sub001/internal/config"
	"github.com/pro-power/polishr-sub001/internal/models"
	"github.com/pro-power/polishr-sub001/internal/service"
	"github.com/pro-power/polishr-sub001/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

// tokenRepoStub backs the issuer without a database.
type tokenRepoStub struct {
	verification *models.EmailVerificationToken
	reset        *models.PasswordResetToken
	consumedUser *models.User
	consumeErr   error
}

func (s *tokenRepoStub) ReplaceVerificationToken(_ context.Context, t *models.EmailVerificationToken) error {
	s.verification = t
	return nil
}
func (s *tokenRepoStub) ReplaceResetToken(_ context.Context, t *models.PasswordResetToken) error {
	s.reset = t
	return nil
}
func (s *tokenRepoStub) ConsumeVerification(context.Context, string, time.Time) (*models.User, error) {
	return s.consumedUser, s.consumeErr
}
func (s *tokenRepoStub) ConsumeReset(context.Context, string, string, time.Time) (*models.User, error) {
	return s.consumedUser, s.consumeErr
}

// mailerStub records outgoing emails.
type mailerStub struct {
	verifications []string
	resets        []string
}

func (m *mailerStub) SendVerification(_ context.Context, to string, _ string) error {
	m.verifications = append(m.verifications, to)
	return nil
}
func (m *mailerStub) SendPasswordReset(_ context.Context, to string, _ string) error {
	m.resets = append(m.resets, to)
	return nil
}

func newAuthTestServer(mockRepo *MockUserRepository) (*Server, *tokenRepoStub, *mailerStub) {
	tokens := &tokenRepoStub{}
	mails := &mailerStub{}
	s := &Server{
		config:      &config.Config{JWTSecret: "test_secret"},
		userRepo:    mockRepo,
		userService: service.NewUserService(mockRepo),
		tokenIssuer: token.NewIssuer(tokens),
		mailer:      mails,
	}
	return s, tokens, mails
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	return doJSON(t, app, http.MethodPost, path, body)
}

func putJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	return doJSON(t, app, http.MethodPut, path, body)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSignup(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s, tokens, mails := newAuthTestServer(mockRepo)
	app.Post("/signup", s.Signup)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "devone",
				"email":    "devone@example.com",
				"password": "Password123",
			},
			mockSetup: func() {
				mockRepo.On("GetByUsername", mock.Anything, "devone").Return(nil, nil)
				mockRepo.On("GetByEmail", mock.Anything, "devone@example.com").Return(nil, nil)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Username taken",
			body: map[string]string{
				"username": "taken",
				"email":    "fresh@example.com",
				"password": "Password123",
			},
			mockSetup: func() {
				mockRepo.On("GetByUsername", mock.Anything, "taken").Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Reserved username",
			body: map[string]string{
				"username": "admin",
				"email":    "fresh@example.com",
				"password": "Password123",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Weak password",
			body: map[string]string{
				"username": "devtwo",
				"email":    "devtwo@example.com",
				"password": "short",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing fields",
			body:           map[string]string{"username": "devthree"},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			resp := postJSON(t, app, "/signup", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	assert.Len(t, mails.verifications, 1, "only the real signup sends mail")
	assert.NotNil(t, tokens.verification)
}

func TestSignup_ExistingEmailLooksLikeSuccess(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s, _, mails := newAuthTestServer(mockRepo)
	app.Post("/signup", s.Signup)

	mockRepo.On("GetByUsername", mock.Anything, "devone").Return(nil, nil)
	mockRepo.On("GetByEmail", mock.Anything, "registered@example.com").
		Return(&models.User{ID: 9, Email: "registered@example.com"}, nil)

	resp := postJSON(t, app, "/signup", map[string]string{
		"username": "devone",
		"email":    "registered@example.com",
		"password": "Password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Account created. Check your email to verify your address.", body["message"])
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, mails.verifications, "no duplicate-account email is sent")
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	require.NoError(t, err)

	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s, _, _ := newAuthTestServer(mockRepo)
	app.Post("/login", s.Login)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"email": "devone@example.com", "password": "Password123"},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "devone@example.com").
					Return(&models.User{ID: 1, Username: "devone", Password: string(hashed)}, nil)
				mockRepo.On("UpdateLastLogin", mock.Anything, uint(1), mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong password",
			body: map[string]string{"email": "devone@example.com", "password": "WrongPass1"},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "devone@example.com").
					Return(&models.User{ID: 1, Username: "devone", Password: string(hashed)}, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown email",
			body: map[string]string{"email": "ghost@example.com", "password": "Password123"},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			resp := postJSON(t, app, "/login", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				body := decodeBody(t, resp)
				assert.NotEmpty(t, body["token"])
			}
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s, tokens, _ := newAuthTestServer(mockRepo)
	app.Post("/verify-email", s.VerifyEmail)

	t.Run("Success", func(t *testing.T) {
		at := time.Now()
		tokens.consumedUser = &models.User{ID: 1, Username: "devone", EmailVerifiedAt: &at}
		tokens.consumeErr = nil

		resp := postJSON(t, app, "/verify-email", map[string]string{"token": "sometoken"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Unknown token", func(t *testing.T) {
		tokens.consumedUser = nil
		tokens.consumeErr = models.NewTokenNotFoundError()

		resp := postJSON(t, app, "/verify-email", map[string]string{"token": "bad"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Missing token", func(t *testing.T) {
		resp := postJSON(t, app, "/verify-email", map[string]string{})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestForgotPassword(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s, tokens, mails := newAuthTestServer(mockRepo)
	app.Post("/forgot-password", s.ForgotPassword)

	mockRepo.On("GetByEmail", mock.Anything, "devone@example.com").
		Return(&models.User{ID: 1, Email: "devone@example.com"}, nil)
	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	known := postJSON(t, app, "/forgot-password", map[string]string{"email": "devone@example.com"})
	unknown := postJSON(t, app, "/forgot-password", map[string]string{"email": "ghost@example.com"})

	assert.Equal(t, http.StatusOK, known.StatusCode)
	assert.Equal(t, http.StatusOK, unknown.StatusCode)
	assert.Equal(t, decodeBody(t, known)["message"], decodeBody(t, unknown)["message"],
		"responses are indistinguishable for known and unknown emails")

	assert.Len(t, mails.resets, 1)
	require.NotNil(t, tokens.reset)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tokens.reset.ExpiresAt, time.Minute)
}

func TestResetPassword(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s, tokens, _ := newAuthTestServer(mockRepo)
	app.Post("/reset-password", s.ResetPassword)

	t.Run("Success", func(t *testing.T) {
		tokens.consumedUser = &models.User{ID: 1}
		tokens.consumeErr = nil

		resp := postJSON(t, app, "/reset-password", map[string]string{
			"token":    "sometoken",
			"password": "NewPassword1",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Expired token", func(t *testing.T) {
		tokens.consumedUser = nil
		tokens.consumeErr = models.NewExpiredTokenError()

		resp := postJSON(t, app, "/reset-password", map[string]string{
			"token":    "stale",
			"password": "NewPassword1",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown token", func(t *testing.T) {
		tokens.consumedUser = nil
		tokens.consumeErr = models.NewTokenNotFoundError()

		resp := postJSON(t, app, "/reset-password", map[string]string{
			"token":    "never-issued",
			"password": "NewPassword1",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Weak replacement password", func(t *testing.T) {
		resp := postJSON(t, app, "/reset-password", map[string]string{
			"token":    "sometoken",
			"password": "short",
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestResendVerification(t *testing.T) {
	mockRepo := new(MockUserRepository)
	s, _, mails := newAuthTestServer(mockRepo)

	app := fiber.New()
	app.Post("/resend", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return s.ResendVerification(c)
	})

	t.Run("Unverified user", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.User{ID: 1, Email: "devone@example.com"}, nil)

		resp := postJSON(t, app, "/resend", map[string]string{})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, mails.verifications, 1)
	})

	t.Run("Already verified", func(t *testing.T) {
		at := time.Now()
		mockRepo.ExpectedCalls = nil
		mockRepo.On("GetByID", mock.Anything, uint(1)).
			Return(&models.User{ID: 1, EmailVerifiedAt: &at}, nil)

		resp := postJSON(t, app, "/resend", map[string]string{})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthRequired(t *testing.T) {
	s, _, _ := newAuthTestServer(new(MockUserRepository))

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	t.Run("Valid token", func(t *testing.T) {
		signed, err := s.generateToken(42, "devone")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, float64(42), body["user_id"])
	})

	t.Run("Missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other, _, _ := newAuthTestServer(new(MockUserRepository))
		other.config.JWTSecret = "another_secret"
		signed, err := other.generateToken(42, "devone")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
