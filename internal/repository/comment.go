package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	SoftDelete(ctx context.Context, id uint) error
	// AddReport stores report and flags the comment in one transaction.
	// A second report by the same user yields a DuplicateReport error.
	AddReport(ctx context.Context, report *models.CommentReport) error
	HasReported(ctx context.Context, commentID, userID uint) (bool, error)
	ListTopLevel(ctx context.Context, blogID uint, page Page) ([]*models.Comment, int64, error)
	ListReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error)
	ListByAuthor(ctx context.Context, authorID uint, page Page) ([]*models.Comment, int64, error)
	ListReported(ctx context.Context, page Page) ([]*models.Comment, int64, error)
	CountActiveByBlog(ctx context.Context, blogID uint) (int64, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return internal(err)
	}
	cache.InvalidateAnalytics(ctx)
	r.log.LogWrite(ctx, "create", map[string]any{"comment_id": comment.ID, "blog_id": comment.BlogID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("content", content)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "soft_delete")
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	cache.InvalidateAnalytics(ctx)
	r.log.LogWrite(ctx, "soft_delete", map[string]any{"comment_id": id})
	return nil
}

func (r *commentRepository) AddReport(ctx context.Context, report *models.CommentReport) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.CommentReport{}).
			Where("comment_id = ? AND user_id = ?", report.CommentID, report.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return models.NewDuplicateReportError()
		}
		if err := tx.Create(report).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewDuplicateReportError()
			}
			return err
		}
		return tx.Model(&models.Comment{}).
			Where("id = ?", report.CommentID).
			Update("is_reported", true).Error
	})
	if err != nil {
		if !models.HasCode(err, models.CodeDuplicateReport) {
			r.log.LogError(ctx, err, "report")
		}
		return internal(err)
	}
	cache.InvalidateAnalytics(ctx)
	return nil
}

func (r *commentRepository) HasReported(ctx context.Context, commentID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommentReport{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error
	if err != nil {
		return false, internal(err)
	}
	return count > 0, nil
}

func (r *commentRepository) paged(ctx context.Context, scope func(*gorm.DB) *gorm.DB, order string, page Page) ([]*models.Comment, int64, error) {
	var total int64
	if err := scope(readDB(r.db).WithContext(ctx).Model(&models.Comment{})).Count(&total).Error; err != nil {
		return nil, 0, internal(err)
	}

	var comments []*models.Comment
	err := scope(readDB(r.db).WithContext(ctx).Model(&models.Comment{})).
		Preload("Author").
		Order(order).
		Order("comments.id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, internal(err)
	}
	return comments, total, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, blogID uint, page Page) ([]*models.Comment, int64, error) {
	return r.paged(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.blog_id = ? AND comments.parent_comment_id IS NULL AND comments.is_active = ?", blogID, true)
	}, "comments.created_at DESC", page)
}

func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []uint) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var replies []*models.Comment
	err := readDB(r.db).WithContext(ctx).
		Preload("Author").
		Where("parent_comment_id IN ? AND is_active = ?", parentIDs, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, internal(err)
	}
	return replies, nil
}

func (r *commentRepository) ListByAuthor(ctx context.Context, authorID uint, page Page) ([]*models.Comment, int64, error) {
	return r.paged(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.author_id = ? AND comments.is_active = ?", authorID, true)
	}, "comments.created_at DESC", page)
}

func (r *commentRepository) ListReported(ctx context.Context, page Page) ([]*models.Comment, int64, error) {
	comments, total, err := r.paged(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.is_reported = ? AND comments.is_active = ?", true, true)
	}, "comments.updated_at DESC", page)
	if err != nil || len(comments) == 0 {
		return comments, total, err
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	var reports []models.CommentReport
	if err := readDB(r.db).WithContext(ctx).
		Where("comment_id IN ?", ids).
		Order("reported_at ASC").
		Find(&reports).Error; err != nil {
		return nil, 0, internal(err)
	}
	byComment := make(map[uint][]models.CommentReport, len(comments))
	for _, rep := range reports {
		byComment[rep.CommentID] = append(byComment[rep.CommentID], rep)
	}
	for _, c := range comments {
		c.Reports = byComment[c.ID]
	}
	return comments, total, nil
}

func (r *commentRepository) CountActiveByBlog(ctx context.Context, blogID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("blog_id = ? AND is_active = ?", blogID, true).
		Count(&count).Error
	if err != nil {
		return 0, internal(err)
	}
	return count, nil
}
