package server

import (
	"carelog/internal/models"
	"carelog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateBlogForm handles GET /create_blog
// @Summary Blog form
// @Description Returns the post form view-model; doctors only
// @Tags blogs
// @Produce json
// @Success 200 {object} object{fields=[]string,categories=[]string}
// @Failure 403 {object} models.ErrorResponse
// @Router /create_blog [get]
func (s *Server) CreateBlogForm(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if !user.IsDoctor() {
		return s.respondAppError(c, models.NewPermissionError("Only doctors can write blog posts"))
	}
	return c.JSON(fiber.Map{
		"fields":     service.BlogSchema.Fields(),
		"categories": models.Categories,
	})
}

// blogForm binds the shared create/edit post form. The image path is
// never taken from the request body; it is set only when a multipart
// upload is saved, so error-path cleanup can only remove files this
// request created.
func (s *Server) blogForm(c *fiber.Ctx) (service.BlogInput, error) {
	var req struct {
		Title    string `json:"title" form:"title"`
		Category string `json:"category" form:"category"`
		Summary  string `json:"summary" form:"summary"`
		Content  string `json:"content" form:"content"`
		Draft    bool   `json:"draft" form:"draft"`
	}
	if err := c.BodyParser(&req); err != nil {
		return service.BlogInput{}, models.NewValidationError("Invalid request body")
	}

	in := service.BlogInput{
		Title:    req.Title,
		Category: req.Category,
		Summary:  req.Summary,
		Content:  req.Content,
		Draft:    req.Draft,
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		content, openErr := readMultipartFile(file)
		if openErr != nil {
			return service.BlogInput{}, models.NewValidationError("Could not read uploaded file")
		}
		rel, saveErr := s.imageService.Save(service.NamespaceBlog, file.Filename, content)
		if saveErr != nil {
			return service.BlogInput{}, saveErr
		}
		in.Image = rel
	}

	return in, nil
}

// CreateBlog handles POST /create_blog
// @Summary Create a blog post
// @Description Doctors create a post, optionally as a draft
// @Tags blogs
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body object{title=string,category=string,summary=string,content=string,draft=bool} true "Post fields"
// @Success 201 {object} object{blog=object}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /create_blog [post]
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	in, err := s.blogForm(c)
	if err != nil {
		return s.respondAppError(c, err)
	}

	blog, err := s.blogService.Create(c.Context(), s.currentUser(c), in)
	if err != nil {
		if in.Image != "" {
			s.imageService.Remove(in.Image)
		}
		return s.respondAppError(c, err)
	}

	if wantsHTML(c) {
		return c.Redirect("/blogs", fiber.StatusFound)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"blog": s.blogDetailView(blog),
	})
}

// GetBlogs handles GET /blogs?category=
// @Summary List visible posts
// @Description Posts the viewer may see, newest first, with per-category counts. Doctors also see their own drafts.
// @Tags blogs
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} object{blogs=[]object,categories=[]object}
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs [get]
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	viewer := s.currentUser(c)
	category := c.Query("category")
	p := parsePagination(c, 20)

	blogs, err := s.blogService.ListVisible(c.Context(), viewer, category, p.Limit, p.Offset)
	if err != nil {
		return s.respondAppError(c, err)
	}

	counts, err := s.blogService.CategoryCounts(c.Context())
	if err != nil {
		return s.respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"blogs":      s.blogListView(blogs),
		"categories": counts,
	})
}

// GetAllBlogs handles GET /blogs/all
// @Summary List all published posts
// @Description Published posts from every author, drafts excluded even for their author
// @Tags blogs
// @Produce json
// @Success 200 {object} object{blogs=[]object}
// @Router /blogs/all [get]
func (s *Server) GetAllBlogs(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	// A nil viewer gets the published-only scope regardless of role.
	blogs, err := s.blogService.ListVisible(c.Context(), nil, "", p.Limit, p.Offset)
	if err != nil {
		return s.respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"blogs": s.blogListView(blogs)})
}

// GetMyBlogs handles GET /blogs/my
// @Summary List own published posts
// @Description The doctor's published posts; drafts live under /draft
// @Tags blogs
// @Produce json
// @Success 200 {object} object{blogs=[]object}
// @Failure 403 {object} models.ErrorResponse
// @Router /blogs/my [get]
func (s *Server) GetMyBlogs(c *fiber.Ctx) error {
	blogs, err := s.blogService.ListMine(c.Context(), s.currentUser(c))
	if err != nil {
		return s.respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"blogs": s.blogListView(blogs)})
}

// GetDrafts handles GET /draft
// @Summary List own draft posts
// @Tags blogs
// @Produce json
// @Success 200 {object} object{blogs=[]object}
// @Failure 403 {object} models.ErrorResponse
// @Router /draft [get]
func (s *Server) GetDrafts(c *fiber.Ctx) error {
	blogs, err := s.blogService.ListDrafts(c.Context(), s.currentUser(c))
	if err != nil {
		return s.respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"blogs": s.blogListView(blogs)})
}

// GetBlogsByCategory handles GET /blogs/:category
// @Summary List published posts in a category
// @Description Patient browse view; doctors are redirected to /blogs
// @Tags blogs
// @Produce json
// @Param category path string true "Category name"
// @Success 200 {object} object{blogs=[]object,category=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{category} [get]
func (s *Server) GetBlogsByCategory(c *fiber.Ctx) error {
	viewer := s.currentUser(c)
	if viewer.IsDoctor() {
		return c.Redirect("/blogs", fiber.StatusFound)
	}

	category, err := categoryParam(c)
	if err != nil {
		return s.respondAppError(c, err)
	}

	p := parsePagination(c, 20)
	blogs, listErr := s.blogService.ListVisible(c.Context(), viewer, category, p.Limit, p.Offset)
	if listErr != nil {
		return s.respondAppError(c, listErr)
	}

	return c.JSON(fiber.Map{
		"category": category,
		"blogs":    s.blogListView(blogs),
	})
}

// categoryParam decodes and validates the :category route segment.
func categoryParam(c *fiber.Ctx) (string, error) {
	raw, err := paramsUnescaped(c, "category")
	if err != nil {
		return "", models.NewValidationError("Invalid category")
	}
	if !models.ValidCategory(raw) {
		return "", models.NewNotFoundError("Category", raw)
	}
	return raw, nil
}

// GetBlog handles GET /blog/:id
// @Summary Show one post
// @Description Drafts are only visible to their author; others get 404
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} object{blog=object}
// @Failure 404 {object} models.ErrorResponse
// @Router /blog/{id} [get]
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blog, getErr := s.blogService.Get(c.Context(), s.currentUser(c), id)
	if getErr != nil {
		return s.respondAppError(c, getErr)
	}
	return c.JSON(fiber.Map{"blog": s.blogDetailView(blog)})
}

// EditBlogForm handles GET /edit_blog/:id
// @Summary Edit form
// @Description Returns the post's current fields; owning author only
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} object{blog=object,categories=[]string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /edit_blog/{id} [get]
func (s *Server) EditBlogForm(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user := s.currentUser(c)
	blog, getErr := s.blogService.Get(c.Context(), user, id)
	if getErr != nil {
		return s.respondAppError(c, getErr)
	}
	if blog.UserID != user.ID {
		return s.respondAppError(c, models.NewPermissionError("You can only edit your own posts"))
	}

	return c.JSON(fiber.Map{
		"blog":       s.blogDetailView(blog),
		"categories": models.Categories,
	})
}

// EditBlog handles POST /edit_blog/:id
// @Summary Update a blog post
// @Description All fields mutable, including the draft flag; owning author only
// @Tags blogs
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path int true "Blog ID"
// @Param request body object{title=string,category=string,summary=string,content=string,draft=bool} true "Post fields"
// @Success 200 {object} object{blog=object}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /edit_blog/{id} [post]
func (s *Server) EditBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in, formErr := s.blogForm(c)
	if formErr != nil {
		return s.respondAppError(c, formErr)
	}

	blog, updateErr := s.blogService.Update(c.Context(), s.currentUser(c), id, in)
	if updateErr != nil {
		if in.Image != "" {
			s.imageService.Remove(in.Image)
		}
		return s.respondAppError(c, updateErr)
	}

	if wantsHTML(c) {
		return c.Redirect("/blogs", fiber.StatusFound)
	}
	return c.JSON(fiber.Map{"blog": s.blogDetailView(blog)})
}
