package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carelog/internal/auth"
	"carelog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signupBody() map[string]interface{} {
	return map[string]interface{}{
		"first_name":       "Greg",
		"last_name":        "House",
		"username":         "drhouse",
		"email":            "house@example.com",
		"password":         "lupus123",
		"confirm_password": "lupus123",
		"address_line1":    "221B Princeton Ave",
		"city":             "Princeton",
		"state":            "NJ",
		"pincode":          "560001",
		"user_type":        models.UserTypeDoctor,
	}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           func() map[string]interface{}
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: signupBody,
			mockSetup: func(repo *MockUserRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					args.Get(1).(*models.User).ID = 1
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate",
			body: signupBody,
			mockSetup: func(repo *MockUserRepository) {
				repo.On("Create", mock.Anything, mock.Anything).
					Return(models.NewConflictError("username or email already registered"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Password Mismatch",
			body: func() map[string]interface{} {
				b := signupBody()
				b["confirm_password"] = "something else"
				return b
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid User Type",
			body: func() map[string]interface{} {
				b := signupBody()
				b["user_type"] = "Admin"
				return b
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)

			s := newTestServer(t.TempDir(), mockRepo, new(MockBlogRepository))
			app := fiber.New()
			app.Post("/signup", s.Signup)

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/signup", tt.body()))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestSignupPasswordNotEchoed(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 7
	}).Return(nil)

	s := newTestServer(t.TempDir(), mockRepo, new(MockBlogRepository))
	app := fiber.New()
	app.Post("/signup", s.Signup)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/signup", signupBody()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var payload struct {
		User map[string]interface{} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "drhouse", payload.User["username"])
	assert.NotContains(t, payload.User, "password")
}

func TestSignupBrowserRedirectsToLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := newTestServer(t.TempDir(), mockRepo, new(MockBlogRepository))
	app := fiber.New()
	app.Post("/signup", s.Signup)

	req := jsonRequest(t, http.MethodPost, "/signup", signupBody())
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("lupus123")
	require.NoError(t, err)
	stored := &models.User{
		ID:       1,
		Username: "drhouse",
		Password: hash,
		UserType: models.UserTypeDoctor,
	}

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
		wantCookie     bool
	}{
		{
			name: "Success",
			body: map[string]string{"username": "drhouse", "password": "lupus123"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByUsername", mock.Anything, "drhouse").Return(stored, nil)
			},
			expectedStatus: http.StatusOK,
			wantCookie:     true,
		},
		{
			name: "Wrong Password",
			body: map[string]string{"username": "drhouse", "password": "vasculitis"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByUsername", mock.Anything, "drhouse").Return(stored, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown Username",
			body: map[string]string{"username": "nobody", "password": "lupus123"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByUsername", mock.Anything, "nobody").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)

			s := newTestServer(t.TempDir(), mockRepo, new(MockBlogRepository))
			app := fiber.New()
			app.Post("/login", s.Login)

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/login", tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			cookie := sessionCookie(resp)
			if tt.wantCookie {
				require.NotNil(t, cookie)
				assert.NotEmpty(t, cookie.Value)
				assert.True(t, cookie.HttpOnly)

				// The cookie must resolve to the authenticated user.
				userID, err := s.sessions.Get(context.Background(), cookie.Value)
				require.NoError(t, err)
				assert.Equal(t, stored.ID, userID)
			} else {
				assert.Nil(t, cookie)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t.TempDir(), new(MockUserRepository), new(MockBlogRepository))
	app := fiber.New()
	app.Post("/logout", s.Logout)

	sid, err := s.sessions.Create(context.Background(), 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Session is gone and the cookie is expired.
	_, err = s.sessions.Get(context.Background(), sid)
	assert.Error(t, err)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestLogoutWhileAnonymous(t *testing.T) {
	s := newTestServer(t.TempDir(), new(MockUserRepository), new(MockBlogRepository))
	app := fiber.New()
	app.Post("/logout", s.Logout)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignupFormListsFieldsAndRoles(t *testing.T) {
	s := newTestServer(t.TempDir(), new(MockUserRepository), new(MockBlogRepository))
	app := fiber.New()
	app.Get("/signup", s.SignupForm)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/signup", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Fields    []string `json:"fields"`
		UserTypes []string `json:"user_types"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload.Fields, "username")
	assert.ElementsMatch(t, []string{models.UserTypeDoctor, models.UserTypePatient}, payload.UserTypes)
}
