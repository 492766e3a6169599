package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	// Active filters by activation when non-nil.
	Active *bool
	Page
}

// UserWithStats is a user row with the number of blogs they authored.
type UserWithStats struct {
	models.User
	BlogCount int64 `json:"blog_count"`
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetActive(ctx context.Context, id uint, active bool) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	List(ctx context.Context, filter UserFilter) ([]UserWithStats, int64, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewValidationError("Username or email is already in use")
		}
		r.log.LogError(ctx, err, "create")
		return internal(err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{"user_id": user.ID})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.updateColumn(ctx, id, "is_active", active)
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	r.log.LogWrite(ctx, "update", map[string]any{"user_id": id, "column": column})
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]UserWithStats, int64, error) {
	scoped := func() *gorm.DB {
		q := readDB(r.db).WithContext(ctx).Model(&models.User{})
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where(
				`LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(users.email) LIKE ? ESCAPE '\' OR `+
					`LOWER(users.first_name) LIKE ? ESCAPE '\' OR LOWER(users.last_name) LIKE ? ESCAPE '\'`,
				p, p, p, p,
			)
		}
		if filter.Active != nil {
			q = q.Where("users.is_active = ?", *filter.Active)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, internal(err)
	}

	var users []UserWithStats
	err := scoped().
		Select("users.*, (SELECT COUNT(*) FROM blogs WHERE blogs.author_id = users.id) AS blog_count").
		Order("users.created_at DESC").
		Order("users.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Scan(&users).Error
	if err != nil {
		return nil, 0, internal(err)
	}
	return users, total, nil
}
