package server

import (
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBlogs handles GET /api/blogs
// @Summary List blogs
// @Description Page over blogs visible to the caller
// @Tags blogs
// @Produce json
// @Param status query string false "Status filter (admins and own listing)"
// @Param category query string false "Category"
// @Param search query string false "Search term"
// @Param author query int false "Author ID"
// @Param sort query string false "latest, trending, popular or relevance"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} service.BlogPage
// @Failure 400 {object} models.ErrorResponse
// @Router /blogs [get]
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	q := service.ListBlogsQuery{
		Status:      c.Query("status"),
		Category:    c.Query("category"),
		Search:      c.Query("search"),
		AuthorID:    uint(max(c.QueryInt("author", 0), 0)),
		Sort:        c.Query("sort"),
		PageRequest: parsePage(c),
	}

	page, err := s.feedService.List(c.UserContext(), q, s.viewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetTrendingBlogs handles GET /api/blogs/trending
// @Summary Trending blogs
// @Tags blogs
// @Produce json
// @Param limit query int false "Number of blogs"
// @Success 200 {array} service.BlogSummary
// @Router /blogs/trending [get]
func (s *Server) GetTrendingBlogs(c *fiber.Ctx) error {
	blogs, err := s.feedService.Trending(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(blogs)
}

// GetBlog handles GET /api/blogs/:id
// @Summary Get a blog
// @Description Returns the caller's view of a blog and counts the view
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} service.BlogView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [get]
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.feedService.GetBlog(c.UserContext(), id, s.viewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// CreateBlog handles POST /api/blogs
// @Summary Create a blog
// @Description Creates a pending blog, or a draft when draft is true
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateBlogInput true "Blog"
// @Success 201 {object} service.BlogView
// @Failure 400 {object} models.ErrorResponse
// @Router /blogs [post]
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req service.CreateBlogInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	me := actor(c)
	blog, err := s.blogService.Create(c.UserContext(), me, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(service.ProjectBlog(me, blog, false))
}

// UpdateBlog handles PUT /api/blogs/:id
// @Summary Update a blog
// @Tags blogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Param request body service.UpdateBlogInput true "Changes"
// @Success 200 {object} service.BlogView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [put]
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateBlogInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	me := actor(c)
	blog, err := s.blogService.Update(c.UserContext(), id, me, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.ProjectBlog(me, blog, false))
}

// SubmitBlog handles POST /api/blogs/:id/submit
// @Summary Submit a draft for review
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} service.BlogView
// @Failure 409 {object} models.ErrorResponse
// @Router /blogs/{id}/submit [post]
func (s *Server) SubmitBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	me := actor(c)
	blog, err := s.blogService.Submit(c.UserContext(), id, me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.ProjectBlog(me, blog, false))
}

// DeleteBlog handles DELETE /api/blogs/:id
// @Summary Delete a blog
// @Description Removes the blog with its likes, comments and reports
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [delete]
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blogService.Delete(c.UserContext(), id, actor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Blog deleted successfully"})
}

// ToggleLike handles POST /api/blogs/:id/like
// @Summary Like or unlike a blog
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} service.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.blogService.ToggleLike(c.UserContext(), id, actor(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
