package service

import (
	"context"
	"testing"

	"carelog/internal/models"
	"carelog/internal/repository"

	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		listFn:          func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type blogRepoStub struct {
	createFn          func(context.Context, *models.Blog) error
	getByIDFn         func(context.Context, uint) (*models.Blog, error)
	updateFn          func(context.Context, *models.Blog) error
	deleteFn          func(context.Context, uint) error
	listVisibleFn     func(context.Context, *models.User, string, int, int) ([]*models.Blog, error)
	listByAuthorFn    func(context.Context, uint, bool) ([]*models.Blog, error)
	countByCategoryFn func(context.Context) ([]repository.CategoryCount, error)
}

func (s *blogRepoStub) Create(ctx context.Context, blog *models.Blog) error {
	return s.createFn(ctx, blog)
}
func (s *blogRepoStub) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	return s.getByIDFn(ctx, id)
}
func (s *blogRepoStub) Update(ctx context.Context, blog *models.Blog) error {
	return s.updateFn(ctx, blog)
}
func (s *blogRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *blogRepoStub) ListVisible(ctx context.Context, viewer *models.User, category string, limit, offset int) ([]*models.Blog, error) {
	return s.listVisibleFn(ctx, viewer, category, limit, offset)
}
func (s *blogRepoStub) ListByAuthor(ctx context.Context, authorID uint, draft bool) ([]*models.Blog, error) {
	return s.listByAuthorFn(ctx, authorID, draft)
}
func (s *blogRepoStub) CountByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	return s.countByCategoryFn(ctx)
}

func noopBlogRepo() *blogRepoStub {
	return &blogRepoStub{
		createFn:  func(context.Context, *models.Blog) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.Blog, error) { return &models.Blog{}, nil },
		updateFn:  func(context.Context, *models.Blog) error { return nil },
		deleteFn:  func(context.Context, uint) error { return nil },
		listVisibleFn: func(context.Context, *models.User, string, int, int) ([]*models.Blog, error) {
			return nil, nil
		},
		listByAuthorFn: func(context.Context, uint, bool) ([]*models.Blog, error) { return nil, nil },
		countByCategoryFn: func(context.Context) ([]repository.CategoryCount, error) {
			return nil, nil
		},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.IsCode(err, code), "expected %s, got %#v", code, err)
}
