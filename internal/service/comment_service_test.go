package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingTouchRepo is a blog repository whose activity touch always fails.
type failingTouchRepo struct {
	repository.BlogRepository
}

func (failingTouchRepo) TouchActivity(context.Context, uint, time.Time) error {
	return errors.New("touch failed")
}

func TestCommentService_Add(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	blog := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)

	t.Run("top level", func(t *testing.T) {
		c, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "  nice post  "})
		require.NoError(t, err)
		assert.Equal(t, 0, c.Depth)
		assert.Equal(t, "nice post", c.Content)
		assert.True(t, c.IsActive)
		assert.Equal(t, "reader", c.Author.Username)
		assert.WithinDuration(t, fixedNow, env.reload(t, blog.ID).LastActivity, time.Second)
	})

	t.Run("content validation", func(t *testing.T) {
		_, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "   "})
		assertValidationError(t, err)
		_, err = env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: strings.Repeat("x", 501)})
		assertValidationError(t, err)
	})

	t.Run("blog must be approved", func(t *testing.T) {
		pending := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusPending)
		_, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: pending.ID, Content: "hi"})
		assertCode(t, err, models.CodeInvalidState)

		_, err = env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: 9999, Content: "hi"})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("parent on another blog", func(t *testing.T) {
		other := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
		parent := testutil.CreateComment(t, env.db, env.reader.ID, other.ID, nil)
		_, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "hi", ParentCommentID: &parent.ID})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("inactive parent", func(t *testing.T) {
		parent := testutil.CreateComment(t, env.db, env.reader.ID, blog.ID, nil)
		require.NoError(t, env.comments.SoftDelete(ctx, parent.ID, env.asReader()))
		_, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "hi", ParentCommentID: &parent.ID})
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestCommentService_DepthLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	blog := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)

	var parentID *uint
	for depth := 0; depth <= models.MaxCommentDepth; depth++ {
		c, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "reply", ParentCommentID: parentID})
		require.NoError(t, err)
		assert.Equal(t, depth, c.Depth)
		id := c.ID
		parentID = &id
	}

	var before int64
	env.db.Model(&models.Comment{}).Count(&before)

	_, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "too deep", ParentCommentID: parentID})
	assertCode(t, err, models.CodeDepthExceeded)

	var after int64
	env.db.Model(&models.Comment{}).Count(&after)
	assert.Equal(t, before, after)
}

func TestCommentService_ActivityTouchFailureIsNotPropagated(t *testing.T) {
	env := newTestEnv(t)
	blog := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)

	svc := NewCommentService(repository.NewCommentRepository(env.db), failingTouchRepo{env.blogRepo}, events.NewPublisher(nil))
	c, err := svc.Add(context.Background(), env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "still saved"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
}

func TestCommentService_EditAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	blog := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	c := testutil.CreateComment(t, env.db, env.reader.ID, blog.ID, nil)

	_, err := env.comments.Edit(ctx, c.ID, env.asAuthor(), "hijack")
	assertCode(t, err, models.CodeUnauthorized)

	_, err = env.comments.Edit(ctx, c.ID, env.asReader(), "")
	assertValidationError(t, err)

	edited, err := env.comments.Edit(ctx, c.ID, env.asReader(), "edited text")
	require.NoError(t, err)
	assert.Equal(t, "edited text", edited.Content)

	edited, err = env.comments.Edit(ctx, c.ID, env.asAdmin(), "moderated")
	require.NoError(t, err)
	assert.Equal(t, "moderated", edited.Content)

	assertCode(t, env.comments.SoftDelete(ctx, c.ID, env.asAuthor()), models.CodeUnauthorized)
	require.NoError(t, env.comments.SoftDelete(ctx, c.ID, env.asReader()))

	var stored models.Comment
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = env.comments.Edit(ctx, c.ID, env.asReader(), "again")
	assertCode(t, err, models.CodeNotFound)
	assertCode(t, env.comments.SoftDelete(ctx, c.ID, env.asReader()), models.CodeNotFound)
}

func TestCommentService_Report(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	blog := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)
	c := testutil.CreateComment(t, env.db, env.author.ID, blog.ID, nil)

	assertCode(t, env.comments.Report(ctx, c.ID, env.author.ID, ""), models.CodeSelfAction)
	assertValidationError(t, env.comments.Report(ctx, c.ID, env.reader.ID, strings.Repeat("r", 501)))

	require.NoError(t, env.comments.Report(ctx, c.ID, env.reader.ID, ""))
	assertCode(t, env.comments.Report(ctx, c.ID, env.reader.ID, "again"), models.CodeDuplicateReport)

	var reports []models.CommentReport
	require.NoError(t, env.db.Where("comment_id = ?", c.ID).Find(&reports).Error)
	require.Len(t, reports, 1)
	assert.Equal(t, defaultReportReason, reports[0].Reason)

	page, err := env.comments.ListReported(ctx, env.asAdmin(), PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.True(t, page.Comments[0].IsReported)

	_, err = env.comments.ListReported(ctx, env.asReader(), PageRequest{})
	assertCode(t, err, models.CodeForbidden)

	assertCode(t, env.comments.Report(ctx, 5555, env.reader.ID, ""), models.CodeNotFound)
}

func TestCommentService_ListForBlog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	blog := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)

	first, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "first"})
	require.NoError(t, err)
	env.comments.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "second"})
	require.NoError(t, err)

	env.comments.now = func() time.Time { return fixedNow.Add(3 * time.Minute) }
	lateReply, err := env.comments.Add(ctx, env.asAuthor(), AddCommentInput{BlogID: blog.ID, Content: "late", ParentCommentID: &first.ID})
	require.NoError(t, err)
	env.comments.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	earlyReply, err := env.comments.Add(ctx, env.asAuthor(), AddCommentInput{BlogID: blog.ID, Content: "early", ParentCommentID: &first.ID})
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "nested", ParentCommentID: &earlyReply.ID})
	require.NoError(t, err)

	page, err := env.comments.ListForBlog(ctx, blog.ID, PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, second.ID, page.Comments[0].ID)
	assert.Equal(t, first.ID, page.Comments[1].ID)
	assert.Empty(t, page.Comments[0].Replies)
	require.Len(t, page.Comments[1].Replies, 2)
	assert.Equal(t, earlyReply.ID, page.Comments[1].Replies[0].ID)
	assert.Equal(t, lateReply.ID, page.Comments[1].Replies[1].ID)
	assert.Equal(t, int64(2), page.Pagination.Total)

	replies, err := env.comments.Replies(ctx, earlyReply.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "nested", replies[0].Content)

	mine, err := env.comments.ListByUser(ctx, env.author.ID, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Pagination.Total)

	hidden := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusHidden)
	_, err = env.comments.ListForBlog(ctx, hidden.ID, PageRequest{})
	assertCode(t, err, models.CodeNotFound)
}

func TestCommentService_ViewsExposeOnlyPublicAuthorCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	blog := testutil.CreateBlog(t, env.db, env.author.ID, models.BlogStatusApproved)

	top, err := env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "first"})
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, env.asAuthor(), AddCommentInput{BlogID: blog.ID, Content: "reply", ParentCommentID: &top.ID})
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, env.asReader(), AddCommentInput{BlogID: blog.ID, Content: "lonely"})
	require.NoError(t, err)

	page, err := env.comments.ListForBlog(ctx, blog.ID, PageRequest{})
	require.NoError(t, err)
	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), env.reader.Email)
	assert.NotContains(t, string(raw), env.author.Email)
	assert.NotContains(t, string(raw), `"email"`)
	assert.Contains(t, string(raw), `"replies":[]`, "threads without replies keep the key")

	require.NoError(t, env.comments.Report(ctx, top.ID, env.author.ID, "spam"))
	queue, err := env.comments.ListReported(ctx, env.asAdmin(), PageRequest{})
	require.NoError(t, err)
	require.Len(t, queue.Comments, 1)
	require.Len(t, queue.Comments[0].Reports, 1)
	raw, err = json.Marshal(queue)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), env.reader.Email)

	replies, err := env.comments.Replies(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Empty(t, replies[0].Reports)
	assert.Equal(t, "author", replies[0].Author.Username)
}
