package server

import (
	"github.com/gofiber/fiber/v2"
)

// Dashboard handles GET /dashboard
// @Summary Current user dashboard
// @Description Returns the logged-in user's profile view-model
// @Tags users
// @Produce json
// @Success 200 {object} object{user=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /dashboard [get]
func (s *Server) Dashboard(c *fiber.Ctx) error {
	user := s.currentUser(c)
	return c.JSON(fiber.Map{
		"user": s.userView(user),
	})
}

// DeleteUser handles POST /delete_user/:id
// @Summary Delete account
// @Description Deletes the user and cascades to their blog posts; self-only
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /delete_user/{id} [post]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester := s.currentUser(c)
	if err := s.userService.DeleteAccount(c.Context(), requester.ID, targetID); err != nil {
		return s.respondAppError(c, err)
	}

	// The deleted user's session is gone with them.
	if sid := c.Cookies(SessionCookie); sid != "" {
		_ = s.sessions.Destroy(c.Context(), sid)
	}
	clearSessionCookie(c)

	if wantsHTML(c) {
		return c.Redirect("/signup", fiber.StatusFound)
	}
	return c.JSON(fiber.Map{"message": "Account deleted"})
}
