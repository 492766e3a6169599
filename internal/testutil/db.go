// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LongContent is a blog body that satisfies the minimum content length.
var LongContent = strings.Repeat("Meaningful blog content. ", 6)

// NewTestDB opens a migrated in-memory SQLite database. A single connection
// keeps every statement on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "not-a-real-hash",
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Tester",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// BlogOption customises a fixture blog before insert.
type BlogOption func(*models.Blog)

// WithCreatedAt backdates a fixture blog.
func WithCreatedAt(at time.Time) BlogOption {
	return func(b *models.Blog) { b.CreatedAt = at }
}

// WithTitle overrides the fixture title.
func WithTitle(title string) BlogOption {
	return func(b *models.Blog) { b.Title = title }
}

// CreateBlog inserts a valid blog in the given status.
func CreateBlog(t *testing.T, db *gorm.DB, authorID uint, status models.BlogStatus, opts ...BlogOption) *models.Blog {
	t.Helper()
	now := time.Now()
	b := &models.Blog{
		AuthorID:     authorID,
		Title:        "A perfectly valid blog title",
		Content:      LongContent,
		Category:     "general",
		Tags:         models.Tags{"go"},
		Status:       status,
		LastActivity: now,
		CreatedAt:    now,
	}
	if status == models.BlogStatusApproved {
		b.PublishedAt = &now
	}
	for _, opt := range opts {
		opt(b)
	}
	require.NoError(t, db.Omit("Author").Create(b).Error)
	return b
}

// CreateComment inserts an active comment.
func CreateComment(t *testing.T, db *gorm.DB, authorID, blogID uint, parent *models.Comment) *models.Comment {
	t.Helper()
	c := &models.Comment{
		AuthorID: authorID,
		BlogID:   blogID,
		Content:  "a comment",
		IsActive: true,
	}
	if parent != nil {
		c.ParentCommentID = &parent.ID
		c.Depth = parent.Depth + 1
	}
	require.NoError(t, db.Omit("Author").Create(c).Error)
	return c
}
