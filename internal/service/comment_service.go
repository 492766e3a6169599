package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

const defaultReportReason = "Inappropriate content"

type CommentService struct {
	comments repository.CommentRepository
	blogs    repository.BlogRepository
	events   *events.Publisher
	now      func() time.Time
}

type AddCommentInput struct {
	BlogID          uint   `json:"blog_id"`
	Content         string `json:"content"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

// CommentPage is one page of comments with its position.
type CommentPage struct {
	Comments   []CommentView `json:"comments"`
	Pagination Pagination    `json:"pagination"`
}

// CommentThreadPage is one page of top-level comments with their replies.
type CommentThreadPage struct {
	Comments   []CommentThread `json:"comments"`
	Pagination Pagination      `json:"pagination"`
}

func NewCommentService(
	comments repository.CommentRepository,
	blogs repository.BlogRepository,
	publisher *events.Publisher,
) *CommentService {
	return &CommentService{
		comments: comments,
		blogs:    blogs,
		events:   publisher,
		now:      time.Now,
	}
}

func (s *CommentService) Add(ctx context.Context, actor Actor, in AddCommentInput) (*CommentView, error) {
	if actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content := strings.TrimSpace(in.Content)
	if err := validation.ValidateCommentContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	blog, err := s.blogs.GetByID(ctx, in.BlogID)
	if err != nil {
		return nil, err
	}
	if blog.Status != models.BlogStatusApproved {
		return nil, models.NewInvalidStateError("Comments can only be added to published blogs")
	}

	depth := 0
	if in.ParentCommentID != nil {
		parent, err := s.activeComment(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.BlogID != in.BlogID {
			return nil, models.NewNotFoundError("Comment", *in.ParentCommentID)
		}
		depth = parent.Depth + 1
		if depth > models.MaxCommentDepth {
			return nil, models.NewDepthExceededError(models.MaxCommentDepth)
		}
	}

	now := s.now()
	comment := &models.Comment{
		AuthorID:        actor.UserID,
		BlogID:          in.BlogID,
		ParentCommentID: in.ParentCommentID,
		Content:         content,
		Depth:           depth,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentEvents.WithLabelValues("created").Inc()

	s.touchBlogActivity(ctx, in.BlogID, now)
	if blog.AuthorID != actor.UserID {
		s.events.Notify(ctx, blog.AuthorID, events.Event{
			Type:       events.CommentAdded,
			ActorID:    actor.UserID,
			ResourceID: comment.ID,
			Data:       map[string]any{"blog_id": in.BlogID},
		})
	}
	return s.view(ctx, comment.ID)
}

func (s *CommentService) Edit(ctx context.Context, commentID uint, actor Actor, content string) (*CommentView, error) {
	comment, err := s.activeComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeComment(actor, comment, "edit"); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if err := validation.ValidateCommentContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, err
	}
	observability.CommentEvents.WithLabelValues("edited").Inc()
	return s.view(ctx, commentID)
}

func (s *CommentService) SoftDelete(ctx context.Context, commentID uint, actor Actor) error {
	comment, err := s.activeComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := authorizeComment(actor, comment, "delete"); err != nil {
		return err
	}
	if err := s.comments.SoftDelete(ctx, commentID); err != nil {
		return err
	}
	observability.CommentEvents.WithLabelValues("deleted").Inc()
	s.touchBlogActivity(ctx, comment.BlogID, s.now())
	return nil
}

func (s *CommentService) Report(ctx context.Context, commentID, reporterID uint, reason string) error {
	comment, err := s.activeComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID == reporterID {
		return models.NewSelfActionError("You cannot report your own comment")
	}
	reason = strings.TrimSpace(reason)
	if err := validation.ValidateReportReason(reason); err != nil {
		return models.NewValidationError(err.Error())
	}
	if reason == "" {
		reason = defaultReportReason
	}

	reported, err := s.comments.HasReported(ctx, commentID, reporterID)
	if err != nil {
		return err
	}
	if reported {
		return models.NewDuplicateReportError()
	}
	if err := s.comments.AddReport(ctx, &models.CommentReport{
		CommentID:  commentID,
		UserID:     reporterID,
		Reason:     reason,
		ReportedAt: s.now(),
	}); err != nil {
		return err
	}
	observability.CommentEvents.WithLabelValues("reported").Inc()
	s.events.Notify(ctx, 0, events.Event{
		Type:       events.CommentReport,
		ActorID:    reporterID,
		ResourceID: commentID,
		Data:       map[string]any{"reason": reason},
	})
	return nil
}

// ListForBlog pages over the top-level comments of a published blog, each
// with its direct replies oldest first.
func (s *CommentService) ListForBlog(ctx context.Context, blogID uint, req PageRequest) (*CommentThreadPage, error) {
	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog.Status != models.BlogStatusApproved {
		return nil, models.NewNotFoundError("Blog", blogID)
	}

	req = req.normalize(0)
	top, total, err := s.comments.ListTopLevel(ctx, blogID, req.window())
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(top))
	threads := make([]CommentThread, len(top))
	byID := make(map[uint]*CommentThread, len(top))
	for i, c := range top {
		ids[i] = c.ID
		threads[i] = CommentThread{CommentView: ProjectComment(c, false), Replies: []CommentView{}}
		byID[c.ID] = &threads[i]
	}
	replies, err := s.comments.ListReplies(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range replies {
		if parent, ok := byID[*r.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, ProjectComment(r, false))
		}
	}

	return &CommentThreadPage{Comments: threads, Pagination: newPagination(req, total)}, nil
}

// Replies returns the direct active replies of a comment.
func (s *CommentService) Replies(ctx context.Context, commentID uint) ([]CommentView, error) {
	if _, err := s.activeComment(ctx, commentID); err != nil {
		return nil, err
	}
	replies, err := s.comments.ListReplies(ctx, []uint{commentID})
	if err != nil {
		return nil, err
	}
	return ProjectComments(replies, false), nil
}

// ListByUser returns the user's active comments, newest first.
func (s *CommentService) ListByUser(ctx context.Context, userID uint, req PageRequest) (*CommentPage, error) {
	req = req.normalize(0)
	comments, total, err := s.comments.ListByAuthor(ctx, userID, req.window())
	if err != nil {
		return nil, err
	}
	return &CommentPage{Comments: ProjectComments(comments, false), Pagination: newPagination(req, total)}, nil
}

// ListReported is the admin moderation queue of reported active comments.
func (s *CommentService) ListReported(ctx context.Context, admin Actor, req PageRequest) (*CommentPage, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	req = req.normalize(0)
	comments, total, err := s.comments.ListReported(ctx, req.window())
	if err != nil {
		return nil, err
	}
	return &CommentPage{Comments: ProjectComments(comments, true), Pagination: newPagination(req, total)}, nil
}

// view reloads a comment with its author and projects it.
func (s *CommentService) view(ctx context.Context, id uint) (*CommentView, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := ProjectComment(comment, false)
	return &view, nil
}

// activeComment loads a comment, treating soft-deleted comments as missing.
func (s *CommentService) activeComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.IsActive {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return comment, nil
}

// touchBlogActivity runs after the comment write has committed. A failure
// here leaves the comment in place and is only logged.
func (s *CommentService) touchBlogActivity(ctx context.Context, blogID uint, at time.Time) {
	if err := s.blogs.TouchActivity(ctx, blogID, at); err != nil {
		observability.LogAsyncOperationError(ctx, "touch_blog_activity", err, map[string]any{"blog_id": blogID})
	}
}

func authorizeComment(actor Actor, comment *models.Comment, action string) error {
	if actor.IsAdmin() || (!actor.Anonymous() && actor.UserID == comment.AuthorID) {
		return nil
	}
	return models.NewUnauthorizedError("Not authorized to " + action + " this comment")
}
