package server

import (
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type moderationRequest struct {
	Reason     string `json:"reason"`
	AdminNotes string `json:"admin_notes"`
}

// parseModeration reads the optional moderation body.
func parseModeration(c *fiber.Ctx) (moderationRequest, error) {
	var req moderationRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	err := c.BodyParser(&req)
	return req, err
}

// GetPendingBlogs handles GET /api/admin/blogs/pending
// @Summary Moderation queue
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} service.BlogPage
// @Router /admin/blogs/pending [get]
func (s *Server) GetPendingBlogs(c *fiber.Ctx) error {
	page, err := s.feedService.Pending(c.UserContext(), actor(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// ApproveBlog handles PUT /api/admin/blogs/:id/approve
// @Summary Approve a pending blog
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Param request body object{admin_notes=string} false "Notes"
// @Success 200 {object} service.BlogView
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/blogs/{id}/approve [put]
func (s *Server) ApproveBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	req, err := parseModeration(c)
	if err != nil {
		return badBody(c)
	}

	me := actor(c)
	blog, err := s.blogService.Approve(c.UserContext(), me, id, req.AdminNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.ProjectBlog(me, blog, false))
}

// RejectBlog handles PUT /api/admin/blogs/:id/reject
// @Summary Reject a pending blog
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Param request body object{reason=string,admin_notes=string} true "Reason"
// @Success 200 {object} service.BlogView
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/blogs/{id}/reject [put]
func (s *Server) RejectBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	req, err := parseModeration(c)
	if err != nil {
		return badBody(c)
	}

	me := actor(c)
	blog, err := s.blogService.Reject(c.UserContext(), me, id, req.Reason, req.AdminNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.ProjectBlog(me, blog, false))
}

// HideBlog handles PUT /api/admin/blogs/:id/hide
// @Summary Hide an approved blog
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} service.BlogView
// @Router /admin/blogs/{id}/hide [put]
func (s *Server) HideBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	req, err := parseModeration(c)
	if err != nil {
		return badBody(c)
	}

	me := actor(c)
	blog, err := s.blogService.Hide(c.UserContext(), me, id, req.AdminNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.ProjectBlog(me, blog, false))
}

// RestoreBlog handles PUT /api/admin/blogs/:id/restore
// @Summary Restore a hidden blog
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 200 {object} service.BlogView
// @Router /admin/blogs/{id}/restore [put]
func (s *Server) RestoreBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	me := actor(c)
	blog, err := s.blogService.Restore(c.UserContext(), me, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.ProjectBlog(me, blog, false))
}

// GetReportedComments handles GET /api/admin/comments/reported
// @Summary Reported comments with their reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.CommentPage
// @Router /admin/comments/reported [get]
func (s *Server) GetReportedComments(c *fiber.Ctx) error {
	page, err := s.commentService.ListReported(c.UserContext(), actor(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetUsers handles GET /api/admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term"
// @Param status query string false "active or inactive"
// @Success 200 {object} service.UserPage
// @Router /admin/users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page, err := s.userService.List(c.UserContext(), actor(c), service.ListUsersQuery{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		PageRequest: parsePage(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// ToggleUserStatus handles PUT /api/admin/users/:id/toggle-status
// @Summary Activate or deactivate a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users/{id}/toggle-status [put]
func (s *Server) ToggleUserStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.ToggleStatus(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetAnalytics handles GET /api/admin/analytics
// @Summary Moderation dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Analytics
// @Router /admin/analytics [get]
func (s *Server) GetAnalytics(c *fiber.Ctx) error {
	analytics, err := s.dashboardService.Analytics(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(analytics)
}
