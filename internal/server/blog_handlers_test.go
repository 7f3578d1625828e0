package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"carelog/internal/models"
	"carelog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testDoctor() *models.User {
	return &models.User{ID: 1, Username: "drhouse", UserType: models.UserTypeDoctor}
}

func testPatient() *models.User {
	return &models.User{ID: 2, Username: "wilson", UserType: models.UserTypePatient}
}

// blogApp registers blog routes behind AuthRequired, matching production wiring.
func blogApp(s *Server) *fiber.App {
	app := fiber.New()
	protected := app.Group("", s.AuthRequired())
	protected.Get("/create_blog", s.CreateBlogForm)
	protected.Post("/create_blog", s.CreateBlog)
	protected.Get("/blogs", s.GetBlogs)
	protected.Get("/blogs/all", s.GetAllBlogs)
	protected.Get("/blogs/my", s.GetMyBlogs)
	protected.Get("/draft", s.GetDrafts)
	protected.Get("/blogs/:category", s.GetBlogsByCategory)
	protected.Get("/blog/:id", s.GetBlog)
	protected.Get("/edit_blog/:id", s.EditBlogForm)
	protected.Post("/edit_blog/:id", s.EditBlog)
	return app
}

func loginAs(t *testing.T, s *Server, repo *MockUserRepository, user *models.User) *http.Cookie {
	t.Helper()

	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	sid, err := s.sessions.Create(context.Background(), user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookie, Value: sid}
}

func validBlogBody() map[string]interface{} {
	return map[string]interface{}{
		"title":    "Managing Chronic Stress",
		"category": models.CategoryMentalHealth,
		"summary":  "Practical techniques for keeping chronic stress in check.",
		"content":  "Long-form advice on sleep, exercise and boundaries.",
		"draft":    false,
	}
}

func TestCreateBlog(t *testing.T) {
	tests := []struct {
		name           string
		user           *models.User
		body           func() map[string]interface{}
		mockSetup      func(repo *MockBlogRepository)
		expectedStatus int
	}{
		{
			name: "Doctor Creates Post",
			user: testDoctor(),
			body: validBlogBody,
			mockSetup: func(repo *MockBlogRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Blog).ID = 10
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Patient Forbidden",
			user:           testPatient(),
			body:           validBlogBody,
			mockSetup:      func(repo *MockBlogRepository) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "Unknown Category",
			user: testDoctor(),
			body: func() map[string]interface{} {
				b := validBlogBody()
				b["category"] = "Nutrition"
				return b
			},
			mockSetup:      func(repo *MockBlogRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing Required Fields",
			user: testDoctor(),
			body: func() map[string]interface{} {
				b := validBlogBody()
				delete(b, "title")
				delete(b, "content")
				return b
			},
			mockSetup:      func(repo *MockBlogRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockBlogRepo := new(MockBlogRepository)
			tt.mockSetup(mockBlogRepo)

			s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
			app := blogApp(s)
			cookie := loginAs(t, s, mockUserRepo, tt.user)

			req := jsonRequest(t, http.MethodPost, "/create_blog", tt.body())
			req.AddCookie(cookie)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockBlogRepo.AssertExpectations(t)
		})
	}
}

func TestCreateBlogRejectionKeepsStoredImages(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlogRepo := new(MockBlogRepository)

	uploadDir := t.TempDir()
	stored := filepath.Join(uploadDir, "user", "someone-else.jpg")
	require.NoError(t, os.MkdirAll(filepath.Dir(stored), 0o755))
	require.NoError(t, os.WriteFile(stored, []byte("jpeg bytes"), 0o644))

	s := newTestServer(uploadDir, mockUserRepo, mockBlogRepo)
	app := blogApp(s)
	cookie := loginAs(t, s, mockUserRepo, testPatient())

	body := validBlogBody()
	body["image"] = "user/someone-else.jpg"
	req := jsonRequest(t, http.MethodPost, "/create_blog", body)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_, statErr := os.Stat(stored)
	assert.NoError(t, statErr, "rejected request must not remove files it did not upload")
	mockBlogRepo.AssertExpectations(t)
}

func TestCreateBlogIgnoresImagePathInBody(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlogRepo := new(MockBlogRepository)

	var created *models.Blog
	mockBlogRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Blog)
		created.ID = 11
	}).Return(nil)

	s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
	app := blogApp(s)
	cookie := loginAs(t, s, mockUserRepo, testDoctor())

	body := validBlogBody()
	body["image"] = "blog/not-mine.jpg"
	req := jsonRequest(t, http.MethodPost, "/create_blog", body)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, created)
	assert.Empty(t, created.Image)
	mockBlogRepo.AssertExpectations(t)
}

func TestCreateBlogFormDoctorOnly(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(t.TempDir(), mockUserRepo, new(MockBlogRepository))
	app := blogApp(s)
	cookie := loginAs(t, s, mockUserRepo, testPatient())

	req := httptest.NewRequest(http.MethodGet, "/create_blog", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetBlogDraftVisibility(t *testing.T) {
	author := testDoctor()
	draft := &models.Blog{
		ID:         5,
		Title:      "Unfinished Thoughts",
		Category:   models.CategoryCovid19,
		Summary:    "Not ready yet.",
		Content:    "WIP",
		Draft:      true,
		DatePosted: time.Now().UTC(),
		UserID:     author.ID,
		User:       *author,
	}

	tests := []struct {
		name           string
		viewer         *models.User
		expectedStatus int
	}{
		{"Author Sees Own Draft", author, http.StatusOK},
		{"Patient Gets Not Found", testPatient(), http.StatusNotFound},
		{"Other Doctor Gets Not Found", &models.User{ID: 3, Username: "drcuddy", UserType: models.UserTypeDoctor}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockBlogRepo := new(MockBlogRepository)
			mockBlogRepo.On("GetByID", mock.Anything, uint(5)).Return(draft, nil)

			s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
			app := blogApp(s)
			cookie := loginAs(t, s, mockUserRepo, tt.viewer)

			req := httptest.NewRequest(http.MethodGet, "/blog/5", nil)
			req.AddCookie(cookie)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetBlogInvalidID(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(t.TempDir(), mockUserRepo, new(MockBlogRepository))
	app := blogApp(s)
	cookie := loginAs(t, s, mockUserRepo, testPatient())

	req := httptest.NewRequest(http.MethodGet, "/blog/not-a-number", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBlogsIncludesCategoryCounts(t *testing.T) {
	viewer := testPatient()
	published := &models.Blog{
		ID:         1,
		Title:      "Post-Covid Recovery",
		Category:   models.CategoryCovid19,
		Summary:    "What to expect in the weeks after infection.",
		Content:    "Full recovery guidance.",
		DatePosted: time.Now().UTC(),
		UserID:     1,
		User:       *testDoctor(),
	}
	counts := []repository.CategoryCount{
		{Category: models.CategoryMentalHealth, Count: 0},
		{Category: models.CategoryHeartDisease, Count: 0},
		{Category: models.CategoryCovid19, Count: 1},
		{Category: models.CategoryImmunization, Count: 0},
	}

	mockUserRepo := new(MockUserRepository)
	mockBlogRepo := new(MockBlogRepository)
	mockBlogRepo.On("ListVisible", mock.Anything, viewer, "", 20, 0).
		Return([]*models.Blog{published}, nil)
	mockBlogRepo.On("CountByCategory", mock.Anything).Return(counts, nil)

	s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
	app := blogApp(s)
	cookie := loginAs(t, s, mockUserRepo, viewer)

	req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Blogs []struct {
			ID     uint   `json:"id"`
			Author string `json:"author"`
		} `json:"blogs"`
		Categories []repository.CategoryCount `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Blogs, 1)
	assert.Equal(t, "drhouse", payload.Blogs[0].Author)
	assert.Len(t, payload.Categories, 4)
	mockBlogRepo.AssertExpectations(t)
}

func TestGetBlogsByCategory(t *testing.T) {
	t.Run("Patient With Encoded Category", func(t *testing.T) {
		viewer := testPatient()
		mockUserRepo := new(MockUserRepository)
		mockBlogRepo := new(MockBlogRepository)
		mockBlogRepo.On("ListVisible", mock.Anything, viewer, models.CategoryMentalHealth, 20, 0).
			Return([]*models.Blog{}, nil)

		s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
		app := blogApp(s)
		cookie := loginAs(t, s, mockUserRepo, viewer)

		req := httptest.NewRequest(http.MethodGet, "/blogs/Mental%20Health", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockBlogRepo.AssertExpectations(t)
	})

	t.Run("Doctor Redirected To Blogs", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		s := newTestServer(t.TempDir(), mockUserRepo, new(MockBlogRepository))
		app := blogApp(s)
		cookie := loginAs(t, s, mockUserRepo, testDoctor())

		req := httptest.NewRequest(http.MethodGet, "/blogs/Covid19", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/blogs", resp.Header.Get("Location"))
	})

	t.Run("Unknown Category Not Found", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		s := newTestServer(t.TempDir(), mockUserRepo, new(MockBlogRepository))
		app := blogApp(s)
		cookie := loginAs(t, s, mockUserRepo, testPatient())

		req := httptest.NewRequest(http.MethodGet, "/blogs/Astrology", nil)
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGetDraftsRoutesToDraftList(t *testing.T) {
	author := testDoctor()
	mockUserRepo := new(MockUserRepository)
	mockBlogRepo := new(MockBlogRepository)
	mockBlogRepo.On("ListByAuthor", mock.Anything, author.ID, true).
		Return([]*models.Blog{}, nil)

	s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
	app := blogApp(s)
	cookie := loginAs(t, s, mockUserRepo, author)

	req := httptest.NewRequest(http.MethodGet, "/draft", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockBlogRepo.AssertExpectations(t)
}

func TestGetDraftsPatientForbidden(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	s := newTestServer(t.TempDir(), mockUserRepo, new(MockBlogRepository))
	app := blogApp(s)
	cookie := loginAs(t, s, mockUserRepo, testPatient())

	req := httptest.NewRequest(http.MethodGet, "/draft", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEditBlog(t *testing.T) {
	author := testDoctor()
	existing := func() *models.Blog {
		return &models.Blog{
			ID:         7,
			Title:      "Original Title",
			Category:   models.CategoryHeartDisease,
			Summary:    "Original summary.",
			Content:    "Original content.",
			DatePosted: time.Now().UTC().Add(-24 * time.Hour),
			UserID:     author.ID,
			User:       *author,
		}
	}

	t.Run("Author Updates Post", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockBlogRepo := new(MockBlogRepository)
		mockBlogRepo.On("GetByID", mock.Anything, uint(7)).Return(existing(), nil)
		mockBlogRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *models.Blog) bool {
			return b.ID == 7 && b.Title == "Revised Title"
		})).Return(nil)

		s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
		app := blogApp(s)
		cookie := loginAs(t, s, mockUserRepo, author)

		body := validBlogBody()
		body["title"] = "Revised Title"
		body["category"] = models.CategoryHeartDisease
		req := jsonRequest(t, http.MethodPost, "/edit_blog/7", body)
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockBlogRepo.AssertExpectations(t)
	})

	t.Run("Non Author Forbidden", func(t *testing.T) {
		other := &models.User{ID: 3, Username: "drcuddy", UserType: models.UserTypeDoctor}
		mockUserRepo := new(MockUserRepository)
		mockBlogRepo := new(MockBlogRepository)
		mockBlogRepo.On("GetByID", mock.Anything, uint(7)).Return(existing(), nil)

		s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
		app := blogApp(s)
		cookie := loginAs(t, s, mockUserRepo, other)

		req := jsonRequest(t, http.MethodPost, "/edit_blog/7", validBlogBody())
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockBlogRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Missing Post Not Found", func(t *testing.T) {
		mockUserRepo := new(MockUserRepository)
		mockBlogRepo := new(MockBlogRepository)
		mockBlogRepo.On("GetByID", mock.Anything, uint(99)).
			Return(nil, models.NewNotFoundError("Blog", uint(99)))

		s := newTestServer(t.TempDir(), mockUserRepo, mockBlogRepo)
		app := blogApp(s)
		cookie := loginAs(t, s, mockUserRepo, author)

		req := jsonRequest(t, http.MethodPost, "/edit_blog/99", validBlogBody())
		req.AddCookie(cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
