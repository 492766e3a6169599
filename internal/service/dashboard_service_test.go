package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Analytics(t *testing.T) {
	env := newTestEnv(t)
	env.dashboard.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	approved := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusPending)
	testutil.CreateBlog(t, env.db, env.reader.ID, models.BlogStatusDraft)
	testutil.CreateBlog(t, env.db, env.reader.ID, models.BlogStatusApproved)

	_, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: approved.ID, Content: "nice"})
	require.NoError(t, err)
	reported, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: approved.ID, Content: "spam"})
	require.NoError(t, err)
	require.NoError(t, env.comments.Report(ctx, reported.ID, env.author.ID, ""))
	gone, err := env.comments.Add(ctx, env.asAuthor(), AddCommentInput{BlogID: approved.ID, Content: "oops"})
	require.NoError(t, err)
	require.NoError(t, env.comments.SoftDelete(ctx, gone.ID, env.asAuthor()))

	require.NoError(t, env.db.Model(env.reader).Update("is_active", false).Error)

	got, err := env.dashboard.Analytics(ctx, env.asAdmin())
	require.NoError(t, err)

	assert.Equal(t, Overview{
		TotalUsers:       3,
		ActiveUsers:      2,
		InactiveUsers:    1,
		TotalBlogs:       5,
		DraftBlogs:       1,
		PendingBlogs:     1,
		ApprovedBlogs:    3,
		TotalComments:    3,
		ActiveComments:   2,
		DeletedComments:  1,
		ReportedComments: 1,
	}, got.Overview)
	assert.Equal(t, int64(3), got.RecentActivity.NewUsers)
	assert.Equal(t, int64(5), got.RecentActivity.NewBlogs)
	assert.Equal(t, int64(3), got.RecentActivity.NewComments)

	require.NotEmpty(t, got.TopAuthors)
	assert.Equal(t, env.author.ID, got.TopAuthors[0].UserID)
	assert.Equal(t, int64(2), got.TopAuthors[0].ApprovedBlogs)
	assert.Len(t, got.PopularBlogs, 3)

	_, err = env.dashboard.Analytics(ctx, env.asAuthor())
	assertCode(t, err, models.CodeForbidden)
}

func TestDashboardService_AnalyticsCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusPending)

	first, err := env.dashboard.Analytics(ctx, env.asAdmin())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Overview.PendingBlogs)
	assert.True(t, mr.Exists(cache.AnalyticsKey))

	// A raw insert bypasses repository invalidation, so the cached copy is served.
	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusPending)
	second, err := env.dashboard.Analytics(ctx, env.asAdmin())
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Overview.PendingBlogs)

	// Repository writes drop the cached dashboard.
	_, err = env.blogs.Create(ctx, env.asAuthor(), CreateBlogInput{
		Title:   "Fresh submission for review",
		Content: testutil.LongContent,
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.AnalyticsKey))

	third, err := env.dashboard.Analytics(ctx, env.asAdmin())
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.Overview.PendingBlogs)
}
