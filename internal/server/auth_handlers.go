package server

import (
	"carelog/internal/models"
	"carelog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupForm handles GET /signup
// @Summary Signup form
// @Description Returns the registration form view-model
// @Tags auth
// @Produce json
// @Success 200 {object} object{fields=[]string,user_types=[]string}
// @Router /signup [get]
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields":     service.SignupSchema.Fields(),
		"user_types": []string{models.UserTypeDoctor, models.UserTypePatient},
	})
}

// Signup handles POST /signup
// @Summary User signup
// @Description Register a new Doctor or Patient account
// @Tags auth
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body object{first_name=string,last_name=string,username=string,email=string,password=string,confirm_password=string,address_line1=string,city=string,state=string,pincode=string,user_type=string} true "Signup request"
// @Success 201 {object} object{user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		FirstName       string `json:"first_name" form:"first_name"`
		LastName        string `json:"last_name" form:"last_name"`
		Username        string `json:"username" form:"username"`
		Email           string `json:"email" form:"email"`
		Password        string `json:"password" form:"password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
		AddressLine1    string `json:"address_line1" form:"address_line1"`
		City            string `json:"city" form:"city"`
		State           string `json:"state" form:"state"`
		Pincode         string `json:"pincode" form:"pincode"`
		UserType        string `json:"user_type" form:"user_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AddressLine1:    req.AddressLine1,
		City:            req.City,
		State:           req.State,
		Pincode:         req.Pincode,
		UserType:        req.UserType,
	}

	// Optional profile picture on multipart signups.
	if file, err := c.FormFile("profile_picture"); err == nil && file != nil {
		content, openErr := readMultipartFile(file)
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded file"))
		}
		rel, saveErr := s.imageService.Save(service.NamespaceUser, file.Filename, content)
		if saveErr != nil {
			return s.respondAppError(c, saveErr)
		}
		in.ProfilePicture = rel
	}

	user, err := s.userService.Signup(c.Context(), in)
	if err != nil {
		if in.ProfilePicture != "" {
			s.imageService.Remove(in.ProfilePicture)
		}
		return s.respondAppError(c, err)
	}

	if wantsHTML(c) {
		return c.Redirect("/login", fiber.StatusFound)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": s.userView(user),
	})
}

// LoginForm handles GET /login
// @Summary Login form
// @Description Returns the login form view-model
// @Tags auth
// @Produce json
// @Success 200 {object} object{fields=[]string}
// @Router /login [get]
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields": []string{"username", "password"},
	})
}

// Login handles POST /login
// @Summary User login
// @Description Authenticate and establish a session cookie
// @Tags auth
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} object{user=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return s.respondAppError(c, err)
	}

	sid, err := s.sessions.Create(c.Context(), user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, sid)

	if wantsHTML(c) {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"user": s.userView(user),
	})
}

// Logout handles POST /logout
// @Summary Logout
// @Description Destroys the session unconditionally; safe to call while anonymous
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies(SessionCookie); sid != "" {
		_ = s.sessions.Destroy(c.Context(), sid)
	}
	clearSessionCookie(c)

	if wantsHTML(c) {
		return c.Redirect("/login", fiber.StatusFound)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
