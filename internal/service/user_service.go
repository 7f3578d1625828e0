// Package service holds the application's business logic, sitting
// between the HTTP handlers and the repositories.
package service

import (
	"context"
	"log/slog"

	"carelog/internal/auth"
	"carelog/internal/middleware"
	"carelog/internal/models"
	"carelog/internal/observability"
	"carelog/internal/repository"
	"carelog/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// SignupInput carries the raw registration form values. ProfilePicture
// is a storage path already produced by the image store, not raw bytes.
type SignupInput struct {
	FirstName       string
	LastName        string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	AddressLine1    string
	City            string
	State           string
	Pincode         string
	UserType        string
	ProfilePicture  string
}

// SignupSchema validates the registration form field by field.
var SignupSchema = validation.Schema{
	"first_name":    {Required: true, MaxLen: 100},
	"last_name":     {Required: true, MaxLen: 100},
	"username":      {Required: true, Validate: validation.ValidateUsername},
	"email":         {Required: true, Validate: validation.ValidateEmail},
	"password":      {Required: true, Validate: validation.ValidatePassword},
	"address_line1": {Required: true, MaxLen: 200},
	"city":          {Required: true, MaxLen: 100},
	"state":         {Required: true, MaxLen: 100},
	"pincode":       {Required: true, Validate: validation.ValidatePincode},
	"user_type":     {Required: true, Validate: validation.OneOf(models.UserTypeDoctor, models.UserTypePatient)},
}

func (in SignupInput) values() map[string]string {
	return map[string]string{
		"first_name":    in.FirstName,
		"last_name":     in.LastName,
		"username":      in.Username,
		"email":         in.Email,
		"password":      in.Password,
		"address_line1": in.AddressLine1,
		"city":          in.City,
		"state":         in.State,
		"pincode":       in.Pincode,
		"user_type":     in.UserType,
	}
}

// Signup validates the registration form and creates the user. Uniqueness
// of username and email is enforced by the store at commit time, so
// concurrent signups cannot race past the check.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	clean, errs := SignupSchema.Bind(in.values())
	if in.Password != in.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match"
	}
	if len(errs) > 0 {
		return nil, models.NewFieldValidationError(errs)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ProfilePicture: in.ProfilePicture,
		FirstName:      clean["first_name"],
		LastName:       clean["last_name"],
		Username:       clean["username"],
		Email:          clean["email"],
		Password:       hash,
		AddressLine1:   clean["address_line1"],
		City:           clean["city"],
		State:          clean["state"],
		Pincode:        clean["pincode"],
		UserType:       clean["user_type"],
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.SignupsTotal.WithLabelValues(user.UserType).Inc()
	middleware.Logger.InfoContext(ctx, "User registered",
		slog.String("username", user.Username),
		slog.String("user_type", user.UserType),
	)
	return user, nil
}

// Authenticate verifies the username and password. The error is the same
// for an unknown username and a wrong password so the response does not
// reveal which accounts exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user.Password, password) {
		observability.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}

	observability.LoginAttempts.WithLabelValues("success").Inc()
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// DeleteAccount removes a user and all their posts. Users may delete
// only their own account.
func (s *UserService) DeleteAccount(ctx context.Context, requesterID, targetID uint) error {
	if requesterID != targetID {
		return models.NewPermissionError("You can only delete your own account")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "User account deleted", slog.Uint64("user_id", uint64(targetID)))
	return nil
}
