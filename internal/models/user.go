// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User types. Doctors author posts; patients browse published ones.
const (
	UserTypeDoctor  = "Doctor"
	UserTypePatient = "Patient"
)

// User represents a registered member of the Carelog community.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	ProfilePicture string    `gorm:"size:200" json:"profile_picture,omitempty"`
	Username       string    `gorm:"size:100;unique;not null" json:"username"`
	Email          string    `gorm:"size:120;unique;not null" json:"email"`
	Password       string    `gorm:"size:200;not null" json:"-"`
	AddressLine1   string    `gorm:"size:200;not null" json:"address_line1"`
	City           string    `gorm:"size:100;not null" json:"city"`
	State          string    `gorm:"size:100;not null" json:"state"`
	Pincode        string    `gorm:"size:10;not null" json:"pincode"`
	UserType       string    `gorm:"size:10;not null" json:"user_type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Blogs          []Blog    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"blogs,omitempty"`
}

// IsDoctor reports whether the user may author blog posts.
func (u *User) IsDoctor() bool {
	return u.UserType == UserTypeDoctor
}

// ValidUserType reports whether t is one of the two supported roles.
func ValidUserType(t string) bool {
	return t == UserTypeDoctor || t == UserTypePatient
}
