// Package seed provides helpers to create demo data for development and
// manual testing of the moderation workflow.
package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	now   func() time.Time

	// synthetic ID counter when running in DryRun mode
	nextID uint
	// bcrypt is slow; every seeded user shares one hash
	passwordHash string
}

// NewFactory creates a Factory bound to db. A zero Options.RandomSeed seeds
// the generator from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		now:    time.Now,
		nextID: 1000,
	}
}

func (f *Factory) password() (string, error) {
	if f.opts.SkipBcrypt {
		return DefaultPassword, nil
	}
	if f.passwordHash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		f.passwordHash = string(hashed)
	}
	return f.passwordHash, nil
}

// username derives a handle that passes validation.ValidateUsername.
func (f *Factory) username(n int) string {
	base := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, f.faker.Username())
	if len(base) < 3 {
		base = "writer"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s_%d", base, n)
}

// createdAt spreads timestamps over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return f.now().Add(-back)
}

func (f *Factory) persist(v any, assignID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		assignID(f.nextID)
		return nil
	}
	return f.db.Create(v).Error
}

// CreateUser constructs and persists an active user. Overrides run before the insert.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := f.password()
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	username := f.username(n)
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  hashed,
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Bio:       f.faker.Sentence(10),
		Role:      models.RoleUser,
		IsActive:  true,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.persist(user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildBlog constructs a blog in the given status without persisting it.
func (f *Factory) BuildBlog(author *models.User, status models.BlogStatus) *models.Blog {
	created := f.createdAt()
	title := strings.TrimSuffix(f.faker.Sentence(6), ".")
	for validation.ValidateBlogTitle(title) != nil {
		title = strings.TrimSuffix(f.faker.Sentence(8), ".")
	}

	blog := &models.Blog{
		AuthorID:     author.ID,
		Title:        title,
		Content:      f.faker.Paragraph(3, 4, 12, "\n\n"),
		Tags:         validation.NormalizeTags([]string{f.faker.Word(), f.faker.Word(), f.faker.Word()}),
		Status:       status,
		Views:        f.faker.Number(0, 500),
		LastActivity: created,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	if len(f.opts.Categories) > 0 {
		blog.Category = f.opts.Categories[f.faker.Number(0, len(f.opts.Categories)-1)]
	}
	if f.faker.Number(1, 10) <= 3 {
		blog.FeaturedImage = fmt.Sprintf("https://picsum.photos/seed/%s/800/450.jpg", f.faker.UUID())
	}

	switch status {
	case models.BlogStatusApproved, models.BlogStatusHidden:
		published := created.Add(time.Duration(f.faker.Number(1, 48)) * time.Hour)
		if published.After(f.now()) {
			published = f.now()
		}
		blog.PublishedAt = &published
		if status == models.BlogStatusHidden {
			blog.AdminNotes = "Hidden pending a second review."
		}
	case models.BlogStatusRejected:
		blog.RejectionReason = "Please expand the introduction and cite your sources."
	}
	return blog
}

// CreateBlog builds and persists a blog.
func (f *Factory) CreateBlog(author *models.User, status models.BlogStatus, overrides ...func(*models.Blog)) (*models.Blog, error) {
	blog := f.BuildBlog(author, status)
	for _, override := range overrides {
		override(blog)
	}
	if err := f.persist(blog, func(id uint) { blog.ID = id }); err != nil {
		return nil, err
	}
	return blog, nil
}

// CreateComment persists a comment on blog. A non-nil parent makes it a reply
// one level below the parent.
func (f *Factory) CreateComment(author *models.User, blog *models.Blog, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		AuthorID:  author.ID,
		BlogID:    blog.ID,
		Content:   f.faker.Sentence(f.faker.Number(5, 20)),
		IsActive:  true,
		CreatedAt: blog.CreatedAt.Add(time.Duration(f.faker.Number(1, 72)) * time.Hour),
	}
	if comment.CreatedAt.After(f.now()) {
		comment.CreatedAt = f.now()
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
		comment.Depth = parent.Depth + 1
	}
	if err := f.persist(comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on blog.
func (f *Factory) CreateLike(user *models.User, blog *models.Blog) error {
	like := &models.BlogLike{BlogID: blog.ID, UserID: user.ID}
	return f.persist(like, func(id uint) { like.ID = id })
}

// CreateReport persists a report against comment and flags it.
func (f *Factory) CreateReport(reporter *models.User, comment *models.Comment) error {
	report := &models.CommentReport{
		CommentID:  comment.ID,
		UserID:     reporter.ID,
		Reason:     "Looks like spam",
		ReportedAt: f.now(),
	}
	if err := f.persist(report, func(id uint) { report.ID = id }); err != nil {
		return err
	}
	comment.IsReported = true
	if f.opts.DryRun {
		return nil
	}
	return f.db.Model(comment).Update("is_reported", true).Error
}
