// Package service holds the blog moderation and engagement logic.
package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"inkwell/internal/models"
)

const excerptLength = 200

// Actor is the resolved identity performing an operation.
// The zero Actor is an anonymous reader.
type Actor struct {
	UserID uint
	Role   models.Role
}

// Anonymous reports whether the actor has no identity.
func (a Actor) Anonymous() bool { return a.UserID == 0 }

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.UserID != 0 && a.Role == models.RoleAdmin }

// ActorFor builds the Actor of a loaded user.
func ActorFor(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, Role: u.Role}
}

// Permissions is what an actor may do with a blog.
type Permissions struct {
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	IsOwner   bool `json:"is_owner"`
	IsAdmin   bool `json:"is_admin"`
}

func ownerMutable(status models.BlogStatus) bool {
	return status == models.BlogStatusDraft || status == models.BlogStatusRejected
}

// BlogPermissions decides visibility and mutability of blog for viewer.
// Pending blogs are immutable to everyone; approved and hidden blogs only
// to non-admins.
func BlogPermissions(viewer Actor, blog *models.Blog) Permissions {
	p := Permissions{
		IsOwner: !viewer.Anonymous() && viewer.UserID == blog.AuthorID,
		IsAdmin: viewer.IsAdmin(),
	}
	p.CanView = blog.Status == models.BlogStatusApproved || p.IsOwner || p.IsAdmin
	switch {
	case p.IsAdmin:
		p.CanEdit = blog.Status != models.BlogStatusPending
		p.CanDelete = true
	case p.IsOwner:
		p.CanEdit = ownerMutable(blog.Status)
		p.CanDelete = ownerMutable(blog.Status)
	}
	return p
}

// BlogView is the full projection of a blog returned to a single viewer.
type BlogView struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Content         string             `json:"content"`
	Category        string             `json:"category"`
	Tags            []string           `json:"tags"`
	FeaturedImage   string             `json:"featured_image,omitempty"`
	Status          models.BlogStatus  `json:"status"`
	Author          models.UserSummary `json:"author"`
	LikesCount      int                `json:"likes_count"`
	Views           int                `json:"views"`
	TrendingScore   float64            `json:"trending_score"`
	HasLiked        bool               `json:"has_liked"`
	LastActivity    time.Time          `json:"last_activity"`
	PublishedAt     *time.Time         `json:"published_at,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	AdminNotes      string             `json:"admin_notes,omitempty"`
	Permissions     Permissions        `json:"permissions"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// BlogSummary is a list item: the content is replaced by an excerpt.
type BlogSummary struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Excerpt       string             `json:"excerpt"`
	Category      string             `json:"category"`
	Tags          []string           `json:"tags"`
	FeaturedImage string             `json:"featured_image,omitempty"`
	Status        models.BlogStatus  `json:"status"`
	Author        models.UserSummary `json:"author"`
	LikesCount    int                `json:"likes_count"`
	Views         int                `json:"views"`
	TrendingScore float64            `json:"trending_score"`
	PublishedAt   *time.Time         `json:"published_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ProjectBlog builds the view of blog for viewer. Moderation fields are
// only exposed to the owner and to admins.
func ProjectBlog(viewer Actor, blog *models.Blog, hasLiked bool) BlogView {
	perms := BlogPermissions(viewer, blog)
	view := BlogView{
		ID:            blog.ID,
		Title:         blog.Title,
		Content:       blog.Content,
		Category:      blog.Category,
		Tags:          nonNilTags(blog.Tags),
		FeaturedImage: blog.FeaturedImage,
		Status:        blog.Status,
		Author:        blog.Author.Summary(),
		LikesCount:    blog.LikesCount,
		Views:         blog.Views,
		TrendingScore: blog.TrendingScore,
		HasLiked:      hasLiked,
		LastActivity:  blog.LastActivity,
		PublishedAt:   blog.PublishedAt,
		Permissions:   perms,
		CreatedAt:     blog.CreatedAt,
		UpdatedAt:     blog.UpdatedAt,
	}
	if perms.IsOwner || perms.IsAdmin {
		view.RejectionReason = blog.RejectionReason
		view.AdminNotes = blog.AdminNotes
	}
	return view
}

// SummarizeBlog builds the list item for blog.
func SummarizeBlog(blog *models.Blog) BlogSummary {
	return BlogSummary{
		ID:            blog.ID,
		Title:         blog.Title,
		Excerpt:       Excerpt(blog.Content, excerptLength),
		Category:      blog.Category,
		Tags:          nonNilTags(blog.Tags),
		FeaturedImage: blog.FeaturedImage,
		Status:        blog.Status,
		Author:        blog.Author.Summary(),
		LikesCount:    blog.LikesCount,
		Views:         blog.Views,
		TrendingScore: blog.TrendingScore,
		PublishedAt:   blog.PublishedAt,
		CreatedAt:     blog.CreatedAt,
	}
}

// SummarizeBlogs maps SummarizeBlog over blogs.
func SummarizeBlogs(blogs []*models.Blog) []BlogSummary {
	out := make([]BlogSummary, len(blogs))
	for i, b := range blogs {
		out[i] = SummarizeBlog(b)
	}
	return out
}

// CommentView is the public projection of a comment. The author is reduced
// to the public card; reports are only filled in for the moderation queue.
type CommentView struct {
	ID              uint                   `json:"id"`
	BlogID          uint                   `json:"blog_id"`
	ParentCommentID *uint                  `json:"parent_comment_id,omitempty"`
	Author          models.UserSummary     `json:"author"`
	Content         string                 `json:"content"`
	Depth           int                    `json:"depth"`
	IsActive        bool                   `json:"is_active"`
	IsReported      bool                   `json:"is_reported"`
	Reports         []models.CommentReport `json:"reported_by,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CommentThread is a top-level comment with its direct replies, oldest first.
type CommentThread struct {
	CommentView
	Replies []CommentView `json:"replies"`
}

// ProjectComment builds the public view of comment. withReports keeps the
// individual reports and is reserved for admins.
func ProjectComment(comment *models.Comment, withReports bool) CommentView {
	view := CommentView{
		ID:              comment.ID,
		BlogID:          comment.BlogID,
		ParentCommentID: comment.ParentCommentID,
		Author:          comment.Author.Summary(),
		Content:         comment.Content,
		Depth:           comment.Depth,
		IsActive:        comment.IsActive,
		IsReported:      comment.IsReported,
		CreatedAt:       comment.CreatedAt,
		UpdatedAt:       comment.UpdatedAt,
	}
	if withReports {
		view.Reports = comment.Reports
	}
	return view
}

// ProjectComments maps ProjectComment over comments. The result is never nil.
func ProjectComments(comments []*models.Comment, withReports bool) []CommentView {
	out := make([]CommentView, len(comments))
	for i, c := range comments {
		out[i] = ProjectComment(c, withReports)
	}
	return out
}

// Excerpt returns the first n runes of the trimmed content, with an ellipsis
// when it was cut.
func Excerpt(content string, n int) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= n {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
