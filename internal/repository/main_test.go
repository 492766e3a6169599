package repository

import (
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createBlog(t *testing.T, db *gorm.DB, authorID uint, title string, status models.BlogStatus) *models.Blog {
	b := &models.Blog{
		AuthorID:     authorID,
		Title:        title,
		Content:      "content body for " + title,
		Category:     "general",
		Tags:         []string{},
		Status:       status,
		LastActivity: time.Now(),
	}
	if status == models.BlogStatusApproved {
		now := time.Now()
		b.PublishedAt = &now
	}
	require.NoError(t, db.Omit("Author").Create(b).Error)
	return b
}
