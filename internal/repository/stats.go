package repository

import (
	"context"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserCounts summarises the user table.
type UserCounts struct {
	Total    int64 `json:"total_users"`
	Active   int64 `json:"active_users"`
	Inactive int64 `json:"inactive_users"`
}

// CommentCounts summarises the comment table.
type CommentCounts struct {
	Total    int64 `json:"total_comments"`
	Active   int64 `json:"active_comments"`
	Deleted  int64 `json:"deleted_comments"`
	Reported int64 `json:"reported_comments"`
}

// RecentActivity counts rows created since a cutoff.
type RecentActivity struct {
	NewUsers    int64 `json:"new_users"`
	NewBlogs    int64 `json:"new_blogs"`
	NewComments int64 `json:"new_comments"`
}

// AuthorStat is one row of the top authors ranking.
type AuthorStat struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ApprovedBlogs int64  `json:"approved_blogs"`
}

// StatsRepository runs the read-only aggregate queries behind the admin dashboard.
// Each method is an independent read with no locking.
type StatsRepository interface {
	UserCounts(ctx context.Context) (UserCounts, error)
	BlogCountsByStatus(ctx context.Context) (map[models.BlogStatus]int64, error)
	CommentCounts(ctx context.Context) (CommentCounts, error)
	RecentActivity(ctx context.Context, since time.Time) (RecentActivity, error)
	TopAuthors(ctx context.Context, limit int) ([]AuthorStat, error)
	PopularBlogs(ctx context.Context, limit int) ([]*models.Blog, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	q := readDB(r.db).WithContext(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, internal(err)
	}
	return n, nil
}

func (r *statsRepository) UserCounts(ctx context.Context) (UserCounts, error) {
	var out UserCounts
	var err error
	if out.Total, err = r.count(ctx, &models.User{}, ""); err != nil {
		return out, err
	}
	if out.Active, err = r.count(ctx, &models.User{}, "is_active = ?", true); err != nil {
		return out, err
	}
	out.Inactive = out.Total - out.Active
	return out, nil
}

func (r *statsRepository) BlogCountsByStatus(ctx context.Context) (map[models.BlogStatus]int64, error) {
	var rows []struct {
		Status models.BlogStatus
		Count  int64
	}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Blog{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err)
	}

	out := make(map[models.BlogStatus]int64, len(models.BlogStatuses))
	for _, s := range models.BlogStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *statsRepository) CommentCounts(ctx context.Context) (CommentCounts, error) {
	var out CommentCounts
	var err error
	if out.Total, err = r.count(ctx, &models.Comment{}, ""); err != nil {
		return out, err
	}
	if out.Active, err = r.count(ctx, &models.Comment{}, "is_active = ?", true); err != nil {
		return out, err
	}
	if out.Reported, err = r.count(ctx, &models.Comment{}, "is_reported = ? AND is_active = ?", true, true); err != nil {
		return out, err
	}
	out.Deleted = out.Total - out.Active
	return out, nil
}

func (r *statsRepository) RecentActivity(ctx context.Context, since time.Time) (RecentActivity, error) {
	var out RecentActivity
	var err error
	if out.NewUsers, err = r.count(ctx, &models.User{}, "created_at >= ?", since); err != nil {
		return out, err
	}
	if out.NewBlogs, err = r.count(ctx, &models.Blog{}, "created_at >= ?", since); err != nil {
		return out, err
	}
	if out.NewComments, err = r.count(ctx, &models.Comment{}, "created_at >= ?", since); err != nil {
		return out, err
	}
	return out, nil
}

func (r *statsRepository) TopAuthors(ctx context.Context, limit int) ([]AuthorStat, error) {
	var out []AuthorStat
	err := readDB(r.db).WithContext(ctx).
		Table("blogs").
		Select("users.id AS user_id, users.username, users.first_name, users.last_name, COUNT(blogs.id) AS approved_blogs").
		Joins("JOIN users ON users.id = blogs.author_id").
		Where("blogs.status = ?", models.BlogStatusApproved).
		Group("users.id, users.username, users.first_name, users.last_name").
		Order("approved_blogs DESC").
		Order("users.id ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (r *statsRepository) PopularBlogs(ctx context.Context, limit int) ([]*models.Blog, error) {
	var blogs []*models.Blog
	err := readDB(r.db).WithContext(ctx).
		Preload("Author").
		Where("status = ?", models.BlogStatusApproved).
		Order("likes_count DESC").
		Order("views DESC").
		Order("id DESC").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, internal(err)
	}
	return blogs, nil
}
