// Package server contains the HTTP handlers for the application's endpoints.
package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"carelog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// paramsUnescaped returns a route parameter with percent-encoding
// undone, so "/blogs/Mental%20Health" matches the "Mental Health"
// category.
func paramsUnescaped(c *fiber.Ctx, name string) (string, error) {
	return url.PathUnescape(c.Params(name))
}

// readMultipartFile reads an uploaded file fully into memory. Uploads
// are already size-bounded by the image store.
func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// wantsHTML reports whether the client is a browser navigation rather
// than an API consumer. Browser form posts and page loads carry
// text/html in Accept; fetch/XHR clients ask for JSON.
func wantsHTML(c *fiber.Ctx) bool {
	accept := c.Get(fiber.HeaderAccept)
	return strings.Contains(accept, "text/html")
}

// setSessionCookie attaches the session id as a browser-session cookie.
// No MaxAge: the session ends when the browser closes or on logout.
func (s *Server) setSessionCookie(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// respondAppError maps a service error onto the wire. Browser clients
// are redirected with a notice for permission failures (the route-guard
// UX contract); API clients always get the JSON error with its status.
func (s *Server) respondAppError(c *fiber.Ctx, err error) error {
	status := models.StatusForError(err)
	if wantsHTML(c) {
		switch status {
		case fiber.StatusUnauthorized:
			return c.Redirect("/login", fiber.StatusFound)
		case fiber.StatusForbidden:
			return c.Redirect("/blogs?notice=not-allowed", fiber.StatusFound)
		}
	}
	return models.RespondWithError(c, status, err)
}

// blogListItem is the list view-model: summaries are truncated, content
// is omitted.
type blogListItem struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Image      string `json:"image,omitempty"`
	Category   string `json:"category"`
	Summary    string `json:"summary"`
	DatePosted string `json:"date_posted"`
	Draft      bool   `json:"draft"`
	Author     string `json:"author"`
	AuthorID   uint   `json:"author_id"`
}

func (s *Server) blogListView(blogs []*models.Blog) []blogListItem {
	items := make([]blogListItem, 0, len(blogs))
	for _, b := range blogs {
		items = append(items, blogListItem{
			ID:         b.ID,
			Title:      b.Title,
			Image:      s.imageService.URL(b.Image),
			Category:   b.Category,
			Summary:    b.TruncatedSummary(models.DefaultSummaryWords),
			DatePosted: b.DatePosted.Format("2006-01-02 15:04:05"),
			Draft:      b.Draft,
			Author:     b.User.Username,
			AuthorID:   b.UserID,
		})
	}
	return items
}

// blogDetailView carries the full post.
func (s *Server) blogDetailView(b *models.Blog) fiber.Map {
	return fiber.Map{
		"id":          b.ID,
		"title":       b.Title,
		"image":       s.imageService.URL(b.Image),
		"category":    b.Category,
		"summary":     b.Summary,
		"content":     b.Content,
		"date_posted": b.DatePosted,
		"draft":       b.Draft,
		"author": fiber.Map{
			"id":       b.UserID,
			"username": b.User.Username,
			"name":     b.User.FirstName + " " + b.User.LastName,
		},
	}
}

// userView is the dashboard view-model.
func (s *Server) userView(u *models.User) fiber.Map {
	return fiber.Map{
		"id":              u.ID,
		"first_name":      u.FirstName,
		"last_name":       u.LastName,
		"username":        u.Username,
		"email":           u.Email,
		"profile_picture": s.imageService.URL(u.ProfilePicture),
		"address_line1":   u.AddressLine1,
		"city":            u.City,
		"state":           u.State,
		"pincode":         u.Pincode,
		"user_type":       u.UserType,
	}
}
