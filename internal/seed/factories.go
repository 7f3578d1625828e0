// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"carelog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tunes how the factory generates data.
type SeedOptions struct {
	// SkipBcrypt stores the plain password, for fast local seeding.
	SkipBcrypt bool
	// MaxDays spreads post dates over the last N days.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
}

// SeedPassword is the shared password for every generated account.
const SeedPassword = "password123"

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		//nolint:gosec // weak randomness is fine for seeding
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return SeedPassword
	}
	hashed, _ := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	return string(hashed)
}

// CreateUser constructs and persists a sample `models.User` of the
// given role. Optional override functions may modify the generated
// user before saving.
func (f *Factory) CreateUser(userType string, overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := strings.ToLower(first + last + fmt.Sprintf("%d", gofakeit.Number(100, 999)))
	if userType == models.UserTypeDoctor {
		username = "dr" + username
	}

	user := &models.User{
		FirstName:      first,
		LastName:       last,
		Username:       username,
		Email:          gofakeit.Email(),
		Password:       f.password(),
		ProfilePicture: "",
		AddressLine1:   gofakeit.Street(),
		City:           gofakeit.City(),
		State:          gofakeit.StateAbr(),
		Pincode:        fmt.Sprintf("%06d", gofakeit.Number(100000, 999999)),
		UserType:       userType,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildBlog constructs a post for the given doctor without persisting
// it. Useful for batching.
func (f *Factory) BuildBlog(author *models.User, category string, draft bool, overrides ...func(*models.Blog)) *models.Blog {
	blog := &models.Blog{
		Title:    strings.TrimSuffix(gofakeit.Sentence(6), "."),
		Category: category,
		Summary:  gofakeit.Sentence(12),
		Content:  gofakeit.Paragraph(3, 4, 8, "\n\n"),
		Draft:    draft,
		UserID:   author.ID,
	}

	// realistic date_posted spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	blog.DatePosted = time.Now().UTC().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(blog)
	}
	return blog
}

// CreateBlog constructs and persists a sample `models.Blog` for the
// given doctor.
func (f *Factory) CreateBlog(author *models.User, category string, draft bool, overrides ...func(*models.Blog)) (*models.Blog, error) {
	blog := f.BuildBlog(author, category, draft, overrides...)
	if err := f.db.Create(blog).Error; err != nil {
		return nil, err
	}
	return blog, nil
}

// CreateBlogsBatch persists multiple posts in a single DB call.
func (f *Factory) CreateBlogsBatch(blogs []*models.Blog) error {
	if len(blogs) == 0 {
		return nil
	}
	return f.db.Create(&blogs).Error
}
