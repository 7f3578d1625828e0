// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Blog categories. The set is fixed; CreateBlog rejects anything else.
const (
	CategoryMentalHealth = "Mental Health"
	CategoryHeartDisease = "Heart Disease"
	CategoryCovid19      = "Covid19"
	CategoryImmunization = "Immunization"
)

// Categories lists every valid blog category in display order.
var Categories = []string{
	CategoryMentalHealth,
	CategoryHeartDisease,
	CategoryCovid19,
	CategoryImmunization,
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultSummaryWords is the word limit used for list-view summaries.
const DefaultSummaryWords = 15

// Blog represents a post authored by a doctor. Draft posts are visible
// only to their author.
type Blog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:120;not null" json:"title"`
	Image      string    `gorm:"size:120" json:"image,omitempty"`
	Category   string    `gorm:"size:50;not null;index" json:"category"`
	Summary    string    `gorm:"size:300;not null" json:"summary"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	DatePosted time.Time `gorm:"not null;index" json:"date_posted"`
	Draft      bool      `gorm:"default:false" json:"draft"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TruncatedSummary returns the summary cut to at most wordLimit words,
// with "..." appended when anything was cut. An empty summary yields "".
func (b *Blog) TruncatedSummary(wordLimit int) string {
	if wordLimit <= 0 {
		wordLimit = DefaultSummaryWords
	}
	words := strings.Fields(b.Summary)
	if len(words) == 0 {
		return ""
	}
	if len(words) <= wordLimit {
		return b.Summary
	}
	return strings.Join(words[:wordLimit], " ") + "..."
}
