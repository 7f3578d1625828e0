package seed

import (
	"fmt"
	"log"

	"carelog/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumDoctors  int
	NumPatients int
	NumPosts    int
	DraftShare  float64
	ShouldClean bool
	SkipBcrypt  bool
}

// Seed populates the database with test data: doctor and patient
// accounts plus blog posts spread across every category.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d doctors, %d patients, %d posts...",
		opts.NumDoctors, opts.NumPatients, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("warning: could not clear all existing data, continuing anyway")
		}
	}

	factory := NewFactory(db, SeedOptions{SkipBcrypt: opts.SkipBcrypt})

	doctors, err := createUsers(factory, models.UserTypeDoctor, opts.NumDoctors)
	if err != nil {
		return fmt.Errorf("failed to create doctors: %w", err)
	}
	log.Printf("created %d doctor accounts", len(doctors))

	patients, err := createUsers(factory, models.UserTypePatient, opts.NumPatients)
	if err != nil {
		return fmt.Errorf("failed to create patients: %w", err)
	}
	log.Printf("created %d patient accounts", len(patients))

	posts, err := createPosts(factory, doctors, opts.NumPosts, opts.DraftShare)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d blog posts", posts)

	log.Println("database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("clearing existing data...")
	sql := `TRUNCATE TABLE blogs, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(factory *Factory, userType string, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := factory.CreateUser(userType)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createPosts spreads posts round-robin over doctors and categories so
// every category browse page has content. A draftShare fraction of each
// doctor's posts stays unpublished.
func createPosts(factory *Factory, doctors []*models.User, count int, draftShare float64) (int, error) {
	if len(doctors) == 0 || count == 0 {
		return 0, nil
	}
	if draftShare < 0 || draftShare > 1 {
		draftShare = 0.2
	}

	blogs := make([]*models.Blog, 0, count)
	for i := 0; i < count; i++ {
		author := doctors[i%len(doctors)]
		category := models.Categories[i%len(models.Categories)]
		draft := factory.rng.Float64() < draftShare
		blogs = append(blogs, factory.BuildBlog(author, category, draft))
	}

	if err := factory.CreateBlogsBatch(blogs); err != nil {
		return 0, err
	}
	return len(blogs), nil
}
