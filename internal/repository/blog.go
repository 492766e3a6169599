package repository

import (
	"context"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Blog listing sort orders.
const (
	SortLatest    = "latest"
	SortTrending  = "trending"
	SortPopular   = "popular"
	SortRelevance = "relevance"
)

// BlogQuery selects a page of blogs. A nil Statuses slice means every status.
type BlogQuery struct {
	Statuses []models.BlogStatus
	AuthorID uint
	Category string
	Search   string
	Sort     string
	Page
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	// UpdateIfStatus writes changes only while the blog is still in prior.
	// It reports whether a row was updated.
	UpdateIfStatus(ctx context.Context, id uint, prior models.BlogStatus, changes map[string]any) (bool, error)
	Delete(ctx context.Context, id uint) error
	// ToggleLike flips userID's membership in the like set, recounts
	// likes_count from the like table and stores score(blog) as the
	// trending score, all in one transaction that only proceeds while the
	// blog is approved.
	ToggleLike(ctx context.Context, blogID, userID uint, at time.Time, score func(*models.Blog) float64) (bool, *models.Blog, error)
	IsLiked(ctx context.Context, blogID, userID uint) (bool, error)
	// IncrementViews adds one view to an approved blog and stores
	// score(blog) computed from the updated row. It reports whether the view
	// was counted.
	IncrementViews(ctx context.Context, blogID uint, score func(*models.Blog) float64) (bool, *models.Blog, error)
	TouchActivity(ctx context.Context, blogID uint, at time.Time) error
	List(ctx context.Context, q BlogQuery) ([]*models.Blog, int64, error)
}

type blogRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db, log: observability.NewRepoLogger("blogs")}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(blog).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return internal(err)
	}
	cache.InvalidateAnalytics(ctx)
	r.log.LogWrite(ctx, "create", map[string]any{"blog_id": blog.ID, "status": blog.Status})
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).Preload("Author").First(&blog, id).Error; err != nil {
		return nil, notFoundOr(err, "Blog", id)
	}
	return &blog, nil
}

func (r *blogRepository) UpdateIfStatus(ctx context.Context, id uint, prior models.BlogStatus, changes map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ? AND status = ?", id, prior).
		Updates(changes)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return false, internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidateListings(ctx)
	r.log.LogWrite(ctx, "update", map[string]any{"blog_id": id, "prior_status": prior})
	return true, nil
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("blog_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", id).Delete(&models.BlogLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Blog{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return notFoundOr(err, "Blog", id)
	}
	cache.InvalidateListings(ctx)
	r.log.LogWrite(ctx, "delete", map[string]any{"blog_id": id})
	return nil
}

func (r *blogRepository) ToggleLike(ctx context.Context, blogID, userID uint, at time.Time, score func(*models.Blog) float64) (bool, *models.Blog, error) {
	var (
		liked bool
		blog  models.Blog
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claiming the row first holds its lock until commit, so a
		// concurrent moderation transition waits or wins outright.
		claim := tx.Model(&models.Blog{}).
			Where("id = ? AND status = ?", blogID, models.BlogStatusApproved).
			Update("last_activity", at)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			if err := tx.Select("id").First(&models.Blog{}, blogID).Error; err != nil {
				return err
			}
			return models.NewInvalidStateError("Only published blogs can be liked")
		}

		removed := tx.Where("blog_id = ? AND user_id = ?", blogID, userID).Delete(&models.BlogLike{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			like := models.BlogLike{BlogID: blogID, UserID: userID, CreatedAt: at}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}

		recount := tx.Model(&models.Blog{}).Where("id = ?", blogID).
			Update("likes_count", tx.Model(&models.BlogLike{}).Select("COUNT(*)").Where("blog_id = ?", blogID))
		if recount.Error != nil {
			return recount.Error
		}

		if err := tx.First(&blog, blogID).Error; err != nil {
			return err
		}
		blog.TrendingScore = score(&blog)
		return tx.Model(&models.Blog{}).Where("id = ?", blogID).Update("trending_score", blog.TrendingScore).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle_like")
		return false, nil, notFoundOr(err, "Blog", blogID)
	}
	cache.InvalidateListings(ctx)
	return liked, &blog, nil
}

func (r *blogRepository) IsLiked(ctx context.Context, blogID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlogLike{}).
		Where("blog_id = ? AND user_id = ?", blogID, userID).
		Count(&count).Error
	if err != nil {
		return false, internal(err)
	}
	return count > 0, nil
}

func (r *blogRepository) IncrementViews(ctx context.Context, blogID uint, score func(*models.Blog) float64) (bool, *models.Blog, error) {
	var (
		counted bool
		blog    models.Blog
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Blog{}).
			Where("id = ? AND status = ?", blogID, models.BlogStatusApproved).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		counted = true

		// The increment holds the row lock, so the counters read here are
		// the ones the score is stored against.
		if err := tx.First(&blog, blogID).Error; err != nil {
			return err
		}
		blog.TrendingScore = score(&blog)
		return tx.Model(&models.Blog{}).Where("id = ?", blogID).UpdateColumn("trending_score", blog.TrendingScore).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "increment_views")
		return false, nil, internal(err)
	}
	if !counted {
		return false, nil, nil
	}
	return true, &blog, nil
}

func (r *blogRepository) TouchActivity(ctx context.Context, blogID uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ?", blogID).
		UpdateColumn("last_activity", at).Error
	if err != nil {
		r.log.LogError(ctx, err, "touch_activity")
		return internal(err)
	}
	return nil
}

func (r *blogRepository) List(ctx context.Context, q BlogQuery) ([]*models.Blog, int64, error) {
	scoped := func() *gorm.DB {
		db := readDB(r.db).WithContext(ctx).Model(&models.Blog{})
		if q.Statuses != nil {
			db = db.Where("blogs.status IN ?", q.Statuses)
		}
		if q.AuthorID != 0 {
			db = db.Where("blogs.author_id = ?", q.AuthorID)
		}
		if q.Category != "" {
			db = db.Where("LOWER(blogs.category) = ?", toLower(q.Category))
		}
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where(
				`LOWER(blogs.title) LIKE ? ESCAPE '\' OR LOWER(blogs.content) LIKE ? ESCAPE '\' OR LOWER(blogs.tags) LIKE ? ESCAPE '\'`,
				p, p, p,
			)
		}
		return db
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, internal(err)
	}

	var blogs []*models.Blog
	err := applyBlogSort(scoped(), q).
		Preload("Author").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, internal(err)
	}
	return blogs, total, nil
}

// applyBlogSort appends the ORDER BY for q.Sort. Unknown values sort by latest.
func applyBlogSort(db *gorm.DB, q BlogQuery) *gorm.DB {
	switch q.Sort {
	case SortTrending, SortPopular:
		return db.Order("blogs.trending_score DESC").Order("blogs.published_at DESC").Order("blogs.id DESC")
	case SortRelevance:
		if q.Search == "" {
			return applyBlogSort(db, BlogQuery{Sort: SortLatest})
		}
		p := likePattern(q.Search)
		return db.Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL: `(CASE WHEN LOWER(blogs.title) LIKE ? ESCAPE '\' THEN 3 ELSE 0 END + ` +
					`CASE WHEN LOWER(blogs.tags) LIKE ? ESCAPE '\' THEN 2 ELSE 0 END + ` +
					`CASE WHEN LOWER(blogs.content) LIKE ? ESCAPE '\' THEN 1 ELSE 0 END) DESC, ` +
					`blogs.published_at DESC, blogs.id DESC`,
				Vars:               []any{p, p, p},
				WithoutParentheses: true,
			},
		})
	default:
		return db.Order("blogs.created_at DESC").Order("blogs.id DESC")
	}
}
