package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"carelog/internal/middleware"
	"carelog/internal/models"
	"carelog/internal/observability"
	"carelog/internal/repository"
	"carelog/internal/validation"
)

type BlogService struct {
	blogRepo repository.BlogRepository
	userRepo repository.UserRepository
}

func NewBlogService(blogRepo repository.BlogRepository, userRepo repository.UserRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo, userRepo: userRepo}
}

// BlogInput carries the raw post form values, used for both create and edit.
type BlogInput struct {
	Title    string
	Image    string
	Category string
	Summary  string
	Content  string
	Draft    bool
}

// BlogSchema validates the post form field by field.
var BlogSchema = validation.Schema{
	"title":    {Required: true, MaxLen: 120},
	"image":    {MaxLen: 120},
	"category": {Required: true, Validate: validation.OneOf(models.Categories...)},
	"summary":  {Required: true, MaxLen: 300},
	"content":  {Required: true},
}

func (in BlogInput) values() map[string]string {
	return map[string]string{
		"title":    in.Title,
		"image":    in.Image,
		"category": in.Category,
		"summary":  in.Summary,
		"content":  in.Content,
	}
}

// Create validates the form and stores a new post. Only doctors may
// author posts; patients get a permission error regardless of input.
func (s *BlogService) Create(ctx context.Context, author *models.User, in BlogInput) (*models.Blog, error) {
	if author == nil || !author.IsDoctor() {
		return nil, models.NewPermissionError("Only doctors can write blog posts")
	}

	clean, errs := BlogSchema.Bind(in.values())
	if len(errs) > 0 {
		return nil, models.NewFieldValidationError(errs)
	}

	blog := &models.Blog{
		Title:      clean["title"],
		Image:      clean["image"],
		Category:   clean["category"],
		Summary:    clean["summary"],
		Content:    clean["content"],
		DatePosted: time.Now().UTC(),
		Draft:      in.Draft,
		UserID:     author.ID,
	}

	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}

	observability.BlogsCreated.WithLabelValues(blog.Category, strconv.FormatBool(blog.Draft)).Inc()
	middleware.Logger.InfoContext(ctx, "Blog post created",
		slog.Uint64("blog_id", uint64(blog.ID)),
		slog.String("category", blog.Category),
		slog.Bool("draft", blog.Draft),
	)
	blog.User = *author
	return blog, nil
}

// Get fetches a single post. A draft is returned only to its author;
// everyone else gets a not-found error so drafts do not leak their
// existence.
func (s *BlogService) Get(ctx context.Context, viewer *models.User, id uint) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog.Draft && (viewer == nil || viewer.ID != blog.UserID) {
		return nil, models.NewNotFoundError("Blog", id)
	}
	return blog, nil
}

// Update applies edits to an existing post. Non-existence is reported
// before ownership, so probing an arbitrary id cannot distinguish
// "not yours" from "not there" by error order.
func (s *BlogService) Update(ctx context.Context, editor *models.User, id uint, in BlogInput) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if editor == nil || blog.UserID != editor.ID {
		return nil, models.NewPermissionError("You can only edit your own posts")
	}

	clean, errs := BlogSchema.Bind(in.values())
	if len(errs) > 0 {
		return nil, models.NewFieldValidationError(errs)
	}

	blog.Title = clean["title"]
	if clean["image"] != "" {
		blog.Image = clean["image"]
	}
	blog.Category = clean["category"]
	blog.Summary = clean["summary"]
	blog.Content = clean["content"]
	blog.Draft = in.Draft

	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "Blog post updated", slog.Uint64("blog_id", uint64(blog.ID)))
	return blog, nil
}

// ListVisible returns posts the viewer may see, optionally filtered by
// category, newest first.
func (s *BlogService) ListVisible(ctx context.Context, viewer *models.User, category string, limit, offset int) ([]*models.Blog, error) {
	if category != "" && !models.ValidCategory(category) {
		return nil, models.NewNotFoundError("Category", category)
	}
	return s.blogRepo.ListVisible(ctx, viewer, category, limit, offset)
}

// ListMine returns the author's published posts.
func (s *BlogService) ListMine(ctx context.Context, author *models.User) ([]*models.Blog, error) {
	if author == nil || !author.IsDoctor() {
		return nil, models.NewPermissionError("Only doctors have authored posts")
	}
	return s.blogRepo.ListByAuthor(ctx, author.ID, false)
}

// ListDrafts returns the author's unpublished posts.
func (s *BlogService) ListDrafts(ctx context.Context, author *models.User) ([]*models.Blog, error) {
	if author == nil || !author.IsDoctor() {
		return nil, models.NewPermissionError("Only doctors have draft posts")
	}
	return s.blogRepo.ListByAuthor(ctx, author.ID, true)
}

// CategoryCounts reports published post counts per category for the
// category browse page.
func (s *BlogService) CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error) {
	return s.blogRepo.CountByCategory(ctx)
}
