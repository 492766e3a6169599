package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/engagement"
	"inkwell/internal/events"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// BlogService drives the blog moderation lifecycle and engagement counters.
type BlogService struct {
	blogs    repository.BlogRepository
	comments repository.CommentRepository
	events   *events.Publisher
	now      func() time.Time
}

// CreateBlogInput is the payload of a new blog. Draft keeps it out of the
// moderation queue.
type CreateBlogInput struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featured_image"`
	Draft         bool     `json:"draft"`
}

// UpdateBlogInput carries the fields to change; nil fields are left as is.
type UpdateBlogInput struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	Category      *string   `json:"category"`
	Tags          *[]string `json:"tags"`
	FeaturedImage *string   `json:"featured_image"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked         bool    `json:"liked"`
	LikesCount    int     `json:"likes_count"`
	TrendingScore float64 `json:"trending_score"`
}

func NewBlogService(
	blogs repository.BlogRepository,
	comments repository.CommentRepository,
	publisher *events.Publisher,
) *BlogService {
	return &BlogService{
		blogs:    blogs,
		comments: comments,
		events:   publisher,
		now:      time.Now,
	}
}

func validateBlogFields(b *models.Blog) error {
	checks := []error{
		validation.ValidateBlogTitle(b.Title),
		validation.ValidateBlogContent(b.Content),
		validation.ValidateCategory(b.Category),
		validation.ValidateTags(b.Tags),
		validation.ValidateFeaturedImage(b.FeaturedImage),
	}
	for _, err := range checks {
		if err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}

func (s *BlogService) Create(ctx context.Context, actor Actor, in CreateBlogInput) (*models.Blog, error) {
	if actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	status := models.BlogStatusPending
	if in.Draft {
		status = models.BlogStatusDraft
	}
	now := s.now()
	blog := &models.Blog{
		AuthorID:      actor.UserID,
		Title:         strings.TrimSpace(in.Title),
		Content:       strings.TrimSpace(in.Content),
		Category:      strings.TrimSpace(in.Category),
		Tags:          validation.NormalizeTags(in.Tags),
		FeaturedImage: strings.TrimSpace(in.FeaturedImage),
		Status:        status,
		LastActivity:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validateBlogFields(blog); err != nil {
		return nil, err
	}
	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}
	if status == models.BlogStatusPending {
		s.events.Notify(ctx, 0, events.Event{Type: events.BlogSubmitted, ActorID: actor.UserID, ResourceID: blog.ID})
	}
	return s.blogs.GetByID(ctx, blog.ID)
}

// Submit moves the actor's draft into the moderation queue.
func (s *BlogService) Submit(ctx context.Context, blogID uint, actor Actor) (*models.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if actor.Anonymous() || blog.AuthorID != actor.UserID {
		return nil, models.NewUnauthorizedError("Only the author can submit this blog")
	}
	if blog.Status != models.BlogStatusDraft {
		return nil, invalidTransition(blog.Status, "submitted")
	}
	if err := validateBlogFields(blog); err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, blogID, models.BlogStatusDraft, map[string]any{
		"status": models.BlogStatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.events.Notify(ctx, 0, events.Event{Type: events.BlogSubmitted, ActorID: actor.UserID, ResourceID: blogID})
	return updated, nil
}

func (s *BlogService) Approve(ctx context.Context, admin Actor, blogID uint, adminNotes string) (blog *models.Blog, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "BlogService", "Approve", attribute.Int("blog.id", int(blogID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	current, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.BlogStatusPending {
		return nil, models.NewInvalidStateError("Only pending blogs can be approved")
	}
	if err := validation.ValidateAdminNotes(adminNotes); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	now := s.now()
	blog, err = s.transition(ctx, blogID, models.BlogStatusPending, map[string]any{
		"status":           models.BlogStatusApproved,
		"published_at":     now,
		"admin_notes":      strings.TrimSpace(adminNotes),
		"rejection_reason": "",
		"last_activity":    now,
	})
	if err != nil {
		return nil, err
	}
	s.decided(ctx, admin, blog, events.BlogApproved, nil)
	return blog, nil
}

func (s *BlogService) Reject(ctx context.Context, admin Actor, blogID uint, reason, adminNotes string) (blog *models.Blog, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "BlogService", "Reject", attribute.Int("blog.id", int(blogID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := validation.ValidateRejectionReason(reason); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateAdminNotes(adminNotes); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	current, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.BlogStatusPending {
		return nil, models.NewInvalidStateError("Only pending blogs can be rejected")
	}

	blog, err = s.transition(ctx, blogID, models.BlogStatusPending, map[string]any{
		"status":           models.BlogStatusRejected,
		"rejection_reason": strings.TrimSpace(reason),
		"admin_notes":      strings.TrimSpace(adminNotes),
		"published_at":     nil,
	})
	if err != nil {
		return nil, err
	}
	s.decided(ctx, admin, blog, events.BlogRejected, map[string]any{"reason": blog.RejectionReason})
	return blog, nil
}

// Hide takes an approved blog out of public listings.
func (s *BlogService) Hide(ctx context.Context, admin Actor, blogID uint, adminNotes string) (*models.Blog, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := validation.ValidateAdminNotes(adminNotes); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	changes := map[string]any{
		"status":       models.BlogStatusHidden,
		"published_at": nil,
	}
	if notes := strings.TrimSpace(adminNotes); notes != "" {
		changes["admin_notes"] = notes
	}
	blog, err := s.transition(ctx, blogID, models.BlogStatusApproved, changes)
	if err != nil {
		return nil, err
	}
	s.decided(ctx, admin, blog, events.BlogHidden, nil)
	return blog, nil
}

// Restore republishes a hidden blog.
func (s *BlogService) Restore(ctx context.Context, admin Actor, blogID uint) (*models.Blog, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	blog, err := s.transition(ctx, blogID, models.BlogStatusHidden, map[string]any{
		"status":       models.BlogStatusApproved,
		"published_at": s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.decided(ctx, admin, blog, events.BlogRestored, nil)
	return blog, nil
}

func (s *BlogService) Update(ctx context.Context, blogID uint, actor Actor, in UpdateBlogInput) (*models.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	perms := BlogPermissions(actor, blog)
	if !perms.IsOwner && !perms.IsAdmin {
		return nil, models.NewUnauthorizedError("Not authorized to edit this blog")
	}
	if !perms.CanEdit {
		return nil, invalidTransition(blog.Status, "edited")
	}

	next := *blog
	if in.Title != nil {
		next.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		next.Content = strings.TrimSpace(*in.Content)
	}
	if in.Category != nil {
		next.Category = strings.TrimSpace(*in.Category)
	}
	if in.Tags != nil {
		next.Tags = validation.NormalizeTags(*in.Tags)
	}
	if in.FeaturedImage != nil {
		next.FeaturedImage = strings.TrimSpace(*in.FeaturedImage)
	}
	if err := validateBlogFields(&next); err != nil {
		return nil, err
	}

	changes := map[string]any{
		"title":          next.Title,
		"content":        next.Content,
		"category":       next.Category,
		"tags":           next.Tags,
		"featured_image": next.FeaturedImage,
	}
	if blog.Status == models.BlogStatusRejected && !perms.IsAdmin {
		changes["status"] = models.BlogStatusDraft
		changes["rejection_reason"] = ""
		changes["admin_notes"] = ""
	}
	return s.transition(ctx, blogID, blog.Status, changes)
}

func (s *BlogService) Delete(ctx context.Context, blogID uint, actor Actor) error {
	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return err
	}
	perms := BlogPermissions(actor, blog)
	if !perms.IsOwner && !perms.IsAdmin {
		return models.NewUnauthorizedError("Not authorized to delete this blog")
	}
	if !perms.CanDelete {
		return invalidTransition(blog.Status, "deleted")
	}
	if err := s.blogs.Delete(ctx, blogID); err != nil {
		return err
	}
	if perms.IsAdmin && !perms.IsOwner {
		s.events.Notify(ctx, blog.AuthorID, events.Event{Type: events.BlogDeleted, ActorID: actor.UserID, ResourceID: blogID})
	}
	return nil
}

// ToggleLike adds or removes userID's like on an approved blog.
func (s *BlogService) ToggleLike(ctx context.Context, blogID, userID uint) (res *LikeResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "BlogService", "ToggleLike", attribute.Int("blog.id", int(blogID)))
	defer func() { observability.EndSpan(span, err) }()

	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if blog.Status != models.BlogStatusApproved {
		return nil, models.NewInvalidStateError("Only published blogs can be liked")
	}
	if blog.AuthorID == userID {
		return nil, models.NewSelfActionError("You cannot like your own blog")
	}

	now := s.now()
	liked, updated, err := s.blogs.ToggleLike(ctx, blogID, userID, now, func(b *models.Blog) float64 {
		return engagement.DecayScore(engagement.Signals{
			Likes:     b.LikesCount,
			Views:     b.Views,
			CreatedAt: b.CreatedAt,
			Now:       now,
		})
	})
	if err != nil {
		return nil, err
	}

	action := "unlike"
	if liked {
		action = "like"
	}
	observability.LikeToggles.WithLabelValues(action).Inc()
	return &LikeResult{Liked: liked, LikesCount: updated.LikesCount, TrendingScore: updated.TrendingScore}, nil
}

// RecordView counts a view of an approved blog unless the viewer is its author.
// It reports whether the view was counted. viewerID is zero for anonymous readers.
func (s *BlogService) RecordView(ctx context.Context, blogID, viewerID uint) (bool, error) {
	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return false, err
	}
	return s.recordView(ctx, blog, viewerID)
}

// recordView updates blog in place with the new view count and score.
func (s *BlogService) recordView(ctx context.Context, blog *models.Blog, viewerID uint) (bool, error) {
	if blog.Status != models.BlogStatusApproved {
		return false, nil
	}
	if viewerID != 0 && viewerID == blog.AuthorID {
		return false, nil
	}
	comments, err := s.comments.CountActiveByBlog(ctx, blog.ID)
	if err != nil {
		return false, err
	}
	now := s.now()
	counted, updated, err := s.blogs.IncrementViews(ctx, blog.ID, func(b *models.Blog) float64 {
		return engagement.TrendingScore(engagement.Signals{
			Likes:     b.LikesCount,
			Comments:  int(comments),
			Views:     b.Views,
			CreatedAt: b.CreatedAt,
			Now:       now,
		})
	})
	if err != nil || !counted {
		return false, err
	}
	observability.BlogViews.Inc()

	blog.Views = updated.Views
	blog.LikesCount = updated.LikesCount
	blog.TrendingScore = updated.TrendingScore
	return true, nil
}

// transition applies changes while the blog is still in from. When the
// status moved underneath, the blog is re-read to tell NotFound from
// InvalidState.
func (s *BlogService) transition(ctx context.Context, blogID uint, from models.BlogStatus, changes map[string]any) (*models.Blog, error) {
	ok, err := s.blogs.UpdateIfStatus(ctx, blogID, from, changes)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.blogs.GetByID(ctx, blogID)
		if err != nil {
			return nil, err
		}
		return nil, models.NewInvalidStateError(
			fmt.Sprintf("Blog is %s, expected %s", current.Status, from))
	}
	return s.blogs.GetByID(ctx, blogID)
}

func (s *BlogService) decided(ctx context.Context, admin Actor, blog *models.Blog, eventType string, data map[string]any) {
	observability.ModerationDecisions.WithLabelValues(string(blog.Status)).Inc()
	middleware.Logger.InfoContext(ctx, "blog moderated",
		slog.Uint64("blog_id", uint64(blog.ID)),
		slog.Uint64("admin_id", uint64(admin.UserID)),
		slog.String("status", string(blog.Status)),
	)
	s.events.Notify(ctx, blog.AuthorID, events.Event{
		Type:       eventType,
		ActorID:    admin.UserID,
		ResourceID: blog.ID,
		Data:       data,
	})
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

func invalidTransition(status models.BlogStatus, action string) error {
	return models.NewInvalidStateError(fmt.Sprintf("A %s blog cannot be %s", status, action))
}
