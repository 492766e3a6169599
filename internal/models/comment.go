package models

import (
	"time"
)

// MaxCommentDepth bounds reply nesting; top-level comments have depth 0.
const MaxCommentDepth = 3

// Comment is a reply on an approved blog, optionally nested under another comment.
type Comment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AuthorID        uint            `gorm:"not null;index" json:"author_id"`
	Author          User            `gorm:"foreignKey:AuthorID" json:"author"`
	BlogID          uint            `gorm:"not null;index" json:"blog_id"`
	ParentCommentID *uint           `gorm:"index" json:"parent_comment_id,omitempty"`
	Content         string          `gorm:"size:500;not null" json:"content"`
	Depth           int             `gorm:"not null;default:0" json:"depth"`
	IsActive        bool            `gorm:"not null;index" json:"is_active"`
	IsReported      bool            `gorm:"not null" json:"is_reported"`
	Reports         []CommentReport `gorm:"foreignKey:CommentID" json:"reported_by,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CommentReport is one user's report against a comment.
// A user may report a given comment at most once.
type CommentReport struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CommentID  uint      `gorm:"not null;uniqueIndex:idx_comment_report_user" json:"comment_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_comment_report_user" json:"user_id"`
	Reason     string    `gorm:"size:500;not null" json:"reason"`
	ReportedAt time.Time `json:"reported_at"`
}
