package repository

import (
	"context"
	"errors"

	"carelog/internal/cache"
	"carelog/internal/models"

	"gorm.io/gorm"
)

// CategoryCount pairs a category with the number of published posts in it.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// BlogRepository defines persistence operations for blog posts.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id uint) error
	// ListVisible returns posts the viewer is allowed to see, newest
	// first. Doctors additionally see their own drafts; everyone else
	// sees published posts only. An empty category means no filter.
	ListVisible(ctx context.Context, viewer *models.User, category string, limit, offset int) ([]*models.Blog, error)
	ListByAuthor(ctx context.Context, authorID uint, draft bool) ([]*models.Blog, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Create(blog).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBlogLists(ctx)
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	key := cache.BlogKey(id)

	err := cache.Aside(ctx, key, &blog, cache.BlogTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("User").First(&blog, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Blog", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Save(blog).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBlog(ctx, blog.ID)
	cache.InvalidateBlogLists(ctx)
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Blog{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBlog(ctx, id)
	cache.InvalidateBlogLists(ctx)
	return nil
}

// visibleScope limits the query to posts the viewer may see. Ordering
// uses id as a tiebreaker so posts sharing a date_posted stay stable.
func visibleScope(db *gorm.DB, viewer *models.User) *gorm.DB {
	if viewer != nil && viewer.IsDoctor() {
		return db.Where("draft = ? OR user_id = ?", false, viewer.ID)
	}
	return db.Where("draft = ?", false)
}

func (r *blogRepository) ListVisible(ctx context.Context, viewer *models.User, category string, limit, offset int) ([]*models.Blog, error) {
	var blogs []*models.Blog

	fetch := func() error {
		q := visibleScope(r.db.WithContext(ctx).Preload("User"), viewer)
		if category != "" {
			q = q.Where("category = ?", category)
		}
		if limit > 0 {
			q = q.Limit(limit).Offset(offset)
		}

		if err := q.Order("date_posted DESC, id DESC").Find(&blogs).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	// Doctor lists include the viewer's own drafts, so only the shared
	// published list is cached.
	if viewer != nil && viewer.IsDoctor() {
		if err := fetch(); err != nil {
			return nil, err
		}
		return blogs, nil
	}

	if err := cache.Aside(ctx, cache.BlogListKey(category, limit, offset), &blogs, cache.ListTTL, fetch); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (r *blogRepository) ListByAuthor(ctx context.Context, authorID uint, draft bool) ([]*models.Blog, error) {
	var blogs []*models.Blog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND draft = ?", authorID, draft).
		Order("date_posted DESC, id DESC").
		Find(&blogs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return blogs, nil
}

// CountByCategory reports published post counts for every category,
// including categories with no posts yet.
func (r *blogRepository) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Select("category, COUNT(*) as count").
		Where("draft = ?", false).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	byName := make(map[string]int64, len(rows))
	for _, row := range rows {
		byName[row.Category] = row.Count
	}

	counts := make([]CategoryCount, 0, len(models.Categories))
	for _, c := range models.Categories {
		counts = append(counts, CategoryCount{Category: c, Count: byName[c]})
	}
	return counts, nil
}
