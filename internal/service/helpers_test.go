package service

import (
	"testing"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db        *gorm.DB
	blogRepo  repository.BlogRepository
	blogs     *BlogService
	comments  *CommentService
	feed      *FeedService
	users     *UserService
	dashboard *DashboardService

	admin  *models.User
	author *models.User
	reader *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	blogRepo := repository.NewBlogRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	publisher := events.NewPublisher(nil)

	env := &testEnv{
		db:        db,
		blogRepo:  blogRepo,
		blogs:     NewBlogService(blogRepo, commentRepo, publisher),
		comments:  NewCommentService(commentRepo, blogRepo, publisher),
		users:     NewUserService(userRepo, publisher, "test-secret", time.Hour),
		dashboard: NewDashboardService(repository.NewStatsRepository(db)),
		admin:     testutil.CreateUser(t, db, "admin", models.RoleAdmin),
		author:    testutil.CreateUser(t, db, "author", models.RoleUser),
		reader:    testutil.CreateUser(t, db, "reader", models.RoleUser),
	}
	env.blogs.now = func() time.Time { return fixedNow }
	env.comments.now = func() time.Time { return fixedNow }
	env.feed = NewFeedService(blogRepo, env.blogs)
	return env
}

func (e *testEnv) asAdmin() Actor  { return ActorFor(e.admin) }
func (e *testEnv) asAuthor() Actor { return ActorFor(e.author) }
func (e *testEnv) asReader() Actor { return ActorFor(e.reader) }

func (e *testEnv) reload(t *testing.T, blogID uint) *models.Blog {
	t.Helper()
	var b models.Blog
	require.NoError(t, e.db.First(&b, blogID).Error)
	return &b
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func strPtr(s string) *string { return &s }
