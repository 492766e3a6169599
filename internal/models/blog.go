package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BlogStatus is the moderation state of a blog.
type BlogStatus string

const (
	BlogStatusDraft    BlogStatus = "draft"
	BlogStatusPending  BlogStatus = "pending"
	BlogStatusApproved BlogStatus = "approved"
	BlogStatusRejected BlogStatus = "rejected"
	BlogStatusHidden   BlogStatus = "hidden"
)

// BlogStatuses lists every status in lifecycle order.
var BlogStatuses = []BlogStatus{
	BlogStatusDraft,
	BlogStatusPending,
	BlogStatusApproved,
	BlogStatusRejected,
	BlogStatusHidden,
}

// Valid reports whether s is a known status.
func (s BlogStatus) Valid() bool {
	for _, known := range BlogStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Blog is a user-submitted post moving through moderation.
type Blog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AuthorID        uint       `gorm:"not null;index" json:"author_id"`
	Author          User       `gorm:"foreignKey:AuthorID" json:"author"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	Category        string     `gorm:"size:50;index" json:"category"`
	Tags            Tags       `gorm:"type:text" json:"tags"`
	FeaturedImage   string     `json:"featured_image,omitempty"`
	Status          BlogStatus `gorm:"size:16;not null;index" json:"status"`
	LikesCount      int        `gorm:"not null;default:0" json:"likes_count"`
	Views           int        `gorm:"not null;default:0" json:"views"`
	TrendingScore   float64    `gorm:"not null;default:0;index" json:"trending_score"`
	LastActivity    time.Time  `json:"last_activity"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	RejectionReason string     `gorm:"size:500" json:"rejection_reason,omitempty"`
	AdminNotes      string     `gorm:"size:1000" json:"admin_notes,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BlogLike records one user's like on a blog.
// The pair (BlogID, UserID) is unique.
type BlogLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlogID    uint      `gorm:"not null;uniqueIndex:idx_blog_like_user" json:"blog_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_blog_like_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Tags is stored as a JSON array in a text column so that it can be matched
// with LIKE on every supported database.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(t))
}
