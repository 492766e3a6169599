package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_ListPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved,
			testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Second)),
			testutil.WithTitle(fmt.Sprintf("Approved blog number %02d", i)))
	}

	page, err := env.feed.List(ctx, ListBlogsQuery{PageRequest: PageRequest{Page: 3, Limit: 10}}, Actor{})
	require.NoError(t, err)
	assert.Len(t, page.Blogs, 5)
	assert.Equal(t, Pagination{CurrentPage: 3, TotalPages: 3, Total: 25, Limit: 10, HasNext: false, HasPrev: true}, page.Pagination)
	assert.Equal(t, "Approved blog number 04", page.Blogs[0].Title)

	first, err := env.feed.List(ctx, ListBlogsQuery{PageRequest: PageRequest{Page: -2}}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Pagination.CurrentPage)
	assert.Equal(t, 10, first.Pagination.Limit)
	assert.True(t, first.Pagination.HasNext)
	assert.Equal(t, "Approved blog number 24", first.Blogs[0].Title)

	capped, err := env.feed.List(ctx, ListBlogsQuery{PageRequest: PageRequest{Limit: 500}}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, 100, capped.Pagination.Limit)
	assert.Len(t, capped.Blogs, 25)
}

func TestFeedService_ListVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, s := range models.BlogStatuses {
		testutil.CreateBlog(t, env.db, env.author.ID, s)
	}
	testutil.CreateBlog(t, env.db, env.reader.ID, models.BlogStatusApproved)
	testutil.CreateBlog(t, env.db, env.reader.ID, models.BlogStatusDraft)

	count := func(q ListBlogsQuery, viewer Actor) int64 {
		t.Helper()
		page, err := env.feed.List(ctx, q, viewer)
		require.NoError(t, err)
		return page.Pagination.Total
	}

	assert.Equal(t, int64(2), count(ListBlogsQuery{}, Actor{}), "anonymous sees approved")
	assert.Equal(t, int64(2), count(ListBlogsQuery{Status: "pending"}, env.asReader()), "status ignored for non-admins")
	assert.Equal(t, int64(1), count(ListBlogsQuery{Status: "pending"}, env.asAdmin()))
	assert.Equal(t, int64(7), count(ListBlogsQuery{Status: StatusAll}, env.asAdmin()))
	assert.Equal(t, int64(2), count(ListBlogsQuery{}, env.asAdmin()), "admin default is approved")
	assert.Equal(t, int64(5), count(ListBlogsQuery{AuthorID: env.author.ID}, env.asAuthor()), "own listing shows every status")
	assert.Equal(t, int64(1), count(ListBlogsQuery{AuthorID: env.author.ID, Status: "hidden"}, env.asAuthor()))
	assert.Equal(t, int64(1), count(ListBlogsQuery{AuthorID: env.author.ID, Status: "draft"}, env.asReader()), "another author is forced to approved")

	_, err := env.feed.List(ctx, ListBlogsQuery{Status: "bogus"}, env.asAdmin())
	assertValidationError(t, err)
	_, err = env.feed.List(ctx, ListBlogsQuery{Sort: "random"}, Actor{})
	assertValidationError(t, err)
}

func TestFeedService_SearchAndSummaries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	match := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved, testutil.WithTitle("Kubernetes operators explained"))
	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved, testutil.WithTitle("Unrelated gardening notes"))

	page, err := env.feed.List(ctx, ListBlogsQuery{Search: "KUBERNETES"}, Actor{})
	require.NoError(t, err)
	require.Len(t, page.Blogs, 1)
	assert.Equal(t, match.ID, page.Blogs[0].ID)
	assert.NotEmpty(t, page.Blogs[0].Excerpt)
	assert.Equal(t, "author", page.Blogs[0].Author.Username)
}

func TestFeedService_GetBlog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	approved := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	pending := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusPending)

	_, err := env.feed.GetBlog(ctx, pending.ID, env.asReader())
	assertCode(t, err, models.CodeForbidden)
	_, err = env.feed.GetBlog(ctx, pending.ID, Actor{})
	assertCode(t, err, models.CodeForbidden)
	_, err = env.feed.GetBlog(ctx, 31337, Actor{})
	assertCode(t, err, models.CodeNotFound)

	own, err := env.feed.GetBlog(ctx, pending.ID, env.asAuthor())
	require.NoError(t, err)
	assert.True(t, own.Permissions.IsOwner)
	assert.Zero(t, own.Views)

	_, err = env.blogs.ToggleLike(ctx, approved.ID, env.reader.ID)
	require.NoError(t, err)

	view, err := env.feed.GetBlog(ctx, approved.ID, env.asReader())
	require.NoError(t, err)
	assert.True(t, view.HasLiked)
	assert.Equal(t, 1, view.Views)

	view, err = env.feed.GetBlog(ctx, approved.ID, env.asAuthor())
	require.NoError(t, err)
	assert.False(t, view.HasLiked)
	assert.Equal(t, 1, view.Views, "author views are not counted")
}

func TestFeedService_TrendingAndPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	low := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	high := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	require.NoError(t, env.db.Model(low).Update("trending_score", 1.5).Error)
	require.NoError(t, env.db.Model(high).Update("trending_score", 8.0).Error)
	testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusPending)

	trending, err := env.feed.Trending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, high.ID, trending[0].ID)

	queue, err := env.feed.Pending(ctx, env.asAdmin(), PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), queue.Pagination.Total)

	_, err = env.feed.Pending(ctx, env.asAuthor(), PageRequest{})
	assertCode(t, err, models.CodeForbidden)
}
