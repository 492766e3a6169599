package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/testutil"
	"inkwell/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatuses(t *testing.T) {
	counts := computeStatuses(10, DefaultOptions().StatusMix)
	assert.Equal(t, map[models.BlogStatus]int{
		models.BlogStatusApproved: 6,
		models.BlogStatusPending:  2,
		models.BlogStatusDraft:    1,
		models.BlogStatusRejected: 1,
	}, counts)

	counts = computeStatuses(7, map[models.BlogStatus]int{
		models.BlogStatusPending:  1,
		models.BlogStatusApproved: 1,
	})
	assert.Equal(t, 7, counts[models.BlogStatusPending]+counts[models.BlogStatusApproved])

	assert.Equal(t, map[models.BlogStatus]int{models.BlogStatusApproved: 5}, computeStatuses(5, nil))
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no users", func(o *Options) { o.Users = 0 }},
		{"negative blogs", func(o *Options) { o.Blogs = -1 }},
		{"share above one", func(o *Options) { o.ReportedShare = 1.5 }},
		{"unknown status", func(o *Options) { o.StatusMix = map[models.BlogStatus]int{"archived": 1} }},
		{"negative weight", func(o *Options) { o.StatusMix = map[models.BlogStatus]int{models.BlogStatusDraft: -1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
	assert.NoError(t, DefaultOptions().Validate())
	for name, preset := range Presets {
		assert.NoError(t, preset().Validate(), name)
	}
}

func TestLoadPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
users: 3
blogs: 9
status_mix:
  pending: 1
  approved: 2
categories: [go, rust]
`), 0o600))

	opts, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Users)
	assert.Equal(t, 9, opts.Blogs)
	assert.Equal(t, []string{"go", "rust"}, opts.Categories)
	assert.Equal(t, map[models.BlogStatus]int{models.BlogStatusPending: 1, models.BlogStatusApproved: 2}, opts.StatusMix)
	assert.Equal(t, DefaultOptions().CommentsPerBlog, opts.CommentsPerBlog, "unset keys keep defaults")

	require.NoError(t, os.WriteFile(path, []byte("status_mix:\n  archived: 1\n"), 0o600))
	_, err = LoadPreset(path)
	assert.Error(t, err)

	_, err = LoadPreset(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestFactory_BuildBlogIsValid(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, MaxDays: 30, RandomSeed: 42, Categories: []string{"go"}})
	author := &models.User{ID: 1}

	for _, status := range models.BlogStatuses {
		b := f.BuildBlog(author, status)
		assert.NoError(t, validation.ValidateBlogTitle(b.Title))
		assert.NoError(t, validation.ValidateBlogContent(b.Content))
		assert.NoError(t, validation.ValidateFeaturedImage(b.FeaturedImage))
		assert.Equal(t, "go", b.Category)
		assert.WithinDuration(t, f.now(), b.CreatedAt, 31*24*time.Hour)

		switch status {
		case models.BlogStatusApproved, models.BlogStatusHidden:
			require.NotNil(t, b.PublishedAt)
			assert.False(t, b.PublishedAt.Before(b.CreatedAt))
		case models.BlogStatusRejected:
			assert.NoError(t, validation.ValidateRejectionReason(b.RejectionReason))
		default:
			assert.Nil(t, b.PublishedAt)
		}
	}
}

func TestFactory_UsernamesValidate(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, SkipBcrypt: true, RandomSeed: 7})
	for i := 1; i <= 50; i++ {
		u, err := f.CreateUser(i)
		require.NoError(t, err)
		assert.NoError(t, validation.ValidateUsername(u.Username), u.Username)
		assert.NotZero(t, u.ID)
	}
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	opts := Options{
		Users:           6,
		Blogs:           10,
		CommentsPerBlog: 5,
		LikesPerBlog:    3,
		ReportedShare:   1,
		Admins:          1,
		SkipBcrypt:      true,
		RandomSeed:      99,
		StatusMix: map[models.BlogStatus]int{
			models.BlogStatusApproved: 1,
			models.BlogStatusPending:  1,
		},
	}
	s := NewSeeder(db, opts)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, res.Users)
	assert.Equal(t, 10, res.Blogs)
	assert.Equal(t, 25, res.Comments, "only approved blogs get comments")
	assert.Equal(t, 15, res.Likes)
	assert.Equal(t, 25, res.Reports)

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)

	var approved []models.Blog
	require.NoError(t, db.Where("status = ?", models.BlogStatusApproved).Find(&approved).Error)
	require.Len(t, approved, 5)
	for _, b := range approved {
		assert.Equal(t, 3, b.LikesCount)
		assert.Positive(t, b.TrendingScore)
	}

	var selfLikes int64
	require.NoError(t, db.Table("blog_likes").
		Joins("JOIN blogs ON blogs.id = blog_likes.blog_id").
		Where("blogs.author_id = blog_likes.user_id").
		Count(&selfLikes).Error)
	assert.Zero(t, selfLikes)

	var tooDeep int64
	require.NoError(t, db.Model(&models.Comment{}).Where("depth > ?", models.MaxCommentDepth).Count(&tooDeep).Error)
	assert.Zero(t, tooDeep)

	require.NoError(t, s.ClearAll())
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestSeeder_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewTestDB(t)
	opts := DefaultOptions()
	opts.DryRun = true
	opts.SkipBcrypt = true

	res, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, opts.Blogs, res.Blogs)

	var blogs int64
	require.NoError(t, db.Model(&models.Blog{}).Count(&blogs).Error)
	assert.Zero(t, blogs)
}
