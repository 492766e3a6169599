package server

import (
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBlogComments handles GET /api/comments/blog/:blogId
// @Summary List comments of a blog
// @Description Top-level comments newest first, each with its direct replies
// @Tags comments
// @Produce json
// @Param blogId path int true "Blog ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} service.CommentThreadPage
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/blog/{blogId} [get]
func (s *Server) GetBlogComments(c *fiber.Ctx) error {
	blogID, err := s.parseID(c, "blogId")
	if err != nil {
		return nil
	}

	page, err := s.commentService.ListForBlog(c.UserContext(), blogID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetReplies handles GET /api/comments/:id/replies
// @Summary List direct replies of a comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {array} service.CommentView
// @Router /comments/{id}/replies [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	replies, err := s.commentService.Replies(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(replies)
}

// GetMyComments handles GET /api/comments/me
// @Summary List the caller's comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.CommentPage
// @Router /comments/me [get]
func (s *Server) GetMyComments(c *fiber.Ctx) error {
	page, err := s.commentService.ListByUser(c.UserContext(), actor(c).UserID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreateComment handles POST /api/comments
// @Summary Comment on a blog or reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AddCommentInput true "Comment"
// @Success 201 {object} service.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req service.AddCommentInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	comment, err := s.commentService.Add(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} service.CommentView
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	comment, err := s.commentService.Edit(c.UserContext(), id, actor(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Soft-delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.SoftDelete(c.UserContext(), id, actor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}

// ReportComment handles POST /api/comments/:id/report
// @Summary Report a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{reason=string} false "Reason"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /comments/{id}/report [post]
func (s *Server) ReportComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	if err := s.commentService.Report(c.UserContext(), id, actor(c).UserID, req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment reported successfully"})
}
