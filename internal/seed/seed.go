package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"inkwell/internal/engagement"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options configure a seeding run. They double as the YAML preset schema.
type Options struct {
	Users           int      `yaml:"users"`
	Blogs           int      `yaml:"blogs"`
	CommentsPerBlog int      `yaml:"comments_per_blog"`
	LikesPerBlog    int      `yaml:"likes_per_blog"`
	ReportedShare   float64  `yaml:"reported_share"`
	MaxDays         int      `yaml:"max_days"`
	Categories      []string `yaml:"categories"`
	// StatusMix weights blog statuses. An empty mix publishes everything.
	StatusMix  map[models.BlogStatus]int `yaml:"status_mix"`
	Admins     int                       `yaml:"admins"`
	SkipBcrypt bool                      `yaml:"skip_bcrypt"`
	RandomSeed int64                     `yaml:"random_seed"`
	DryRun     bool                      `yaml:"-"`
}

// DefaultOptions is the small demo data set.
func DefaultOptions() Options {
	return Options{
		Users:           20,
		Blogs:           60,
		CommentsPerBlog: 4,
		LikesPerBlog:    5,
		ReportedShare:   0.05,
		MaxDays:         60,
		Admins:          1,
		Categories:      []string{"engineering", "design", "product", "culture", "tutorials"},
		StatusMix: map[models.BlogStatus]int{
			models.BlogStatusApproved: 6,
			models.BlogStatusPending:  2,
			models.BlogStatusDraft:    1,
			models.BlogStatusRejected: 1,
		},
	}
}

// Presets are the built-in named data sets accepted by cmd/seed.
var Presets = map[string]func() Options{
	"demo": DefaultOptions,
	"moderation": func() Options {
		o := DefaultOptions()
		o.Blogs = 40
		o.ReportedShare = 0.3
		o.StatusMix = map[models.BlogStatus]int{
			models.BlogStatusPending:  5,
			models.BlogStatusApproved: 3,
			models.BlogStatusRejected: 1,
			models.BlogStatusHidden:   1,
		}
		return o
	},
	"large": func() Options {
		o := DefaultOptions()
		o.Users = 500
		o.Blogs = 3000
		o.CommentsPerBlog = 8
		o.LikesPerBlog = 20
		o.SkipBcrypt = true
		return o
	},
}

// LoadPreset reads a YAML preset file. Keys absent from the file keep their
// DefaultOptions values.
func LoadPreset(path string) (Options, error) {
	opts := DefaultOptions()
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read preset: %w", err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("preset %s: %w", path, err)
	}
	return opts, nil
}

// Validate rejects option sets that cannot be seeded.
func (o Options) Validate() error {
	if o.Users < 1 {
		return fmt.Errorf("users must be at least 1")
	}
	if o.Blogs < 0 || o.CommentsPerBlog < 0 || o.LikesPerBlog < 0 || o.Admins < 0 {
		return fmt.Errorf("counts cannot be negative")
	}
	if o.ReportedShare < 0 || o.ReportedShare > 1 {
		return fmt.Errorf("reported_share must be between 0 and 1")
	}
	for status, weight := range o.StatusMix {
		if !status.Valid() {
			return fmt.Errorf("unknown blog status %q", status)
		}
		if weight < 0 {
			return fmt.Errorf("weight for %q cannot be negative", status)
		}
	}
	return nil
}

// computeStatuses splits n blogs across the weighted statuses in lifecycle
// order. The rounding remainder goes to the heaviest status.
func computeStatuses(n int, mix map[models.BlogStatus]int) map[models.BlogStatus]int {
	out := make(map[models.BlogStatus]int, len(mix))
	total := 0
	for _, w := range mix {
		total += w
	}
	if total == 0 {
		out[models.BlogStatusApproved] = n
		return out
	}

	assigned := 0
	var heaviest models.BlogStatus
	for _, status := range models.BlogStatuses {
		w := mix[status]
		if w == 0 {
			continue
		}
		if heaviest == "" || w > mix[heaviest] {
			heaviest = status
		}
		count := n * w / total
		out[status] = count
		assigned += count
	}
	out[heaviest] += n - assigned
	return out
}

// Result counts what a run created.
type Result struct {
	Users    int
	Blogs    int
	Comments int
	Likes    int
	Reports  int
}

// Seeder populates the database from Options.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll removes every row the seeder writes, children first.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		return nil
	}
	for _, table := range []string{"comment_reports", "comments", "blog_likes", "blogs", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	middleware.Logger.Info("seed data cleared")
	return nil
}

// Run seeds users, blogs, comments, likes and reports, then refreshes the
// denormalized counters and trending scores of the seeded blogs.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &Result{}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		role := models.RoleUser
		if i < s.opts.Admins {
			role = models.RoleAdmin
		}
		u, err := s.factory.CreateUser(i+1, func(u *models.User) { u.Role = role })
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	counts := computeStatuses(s.opts.Blogs, s.opts.StatusMix)
	statuses := make([]models.BlogStatus, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	n := 0
	for _, status := range statuses {
		for i := 0; i < counts[status]; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			author := users[n%len(users)]
			n++
			blog, err := s.factory.CreateBlog(author, status)
			if err != nil {
				return nil, fmt.Errorf("create blog: %w", err)
			}
			res.Blogs++
			if status != models.BlogStatusApproved {
				continue
			}
			if err := s.engage(ctx, blog, users, res); err != nil {
				return nil, err
			}
		}
	}

	middleware.Logger.Info("seeding completed",
		slog.Int("users", res.Users),
		slog.Int("blogs", res.Blogs),
		slog.Int("comments", res.Comments),
		slog.Int("likes", res.Likes),
		slog.Int("reports", res.Reports),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

// engage adds likes, a comment thread and reports to an approved blog.
func (s *Seeder) engage(ctx context.Context, blog *models.Blog, users []*models.User, res *Result) error {
	f := s.factory

	likes := 0
	for _, u := range pick(f, users, s.opts.LikesPerBlog, blog.AuthorID) {
		if err := f.CreateLike(u, blog); err != nil {
			return fmt.Errorf("create like: %w", err)
		}
		likes++
	}
	res.Likes += likes

	comments := make([]*models.Comment, 0, s.opts.CommentsPerBlog)
	for i := 0; i < s.opts.CommentsPerBlog; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		var parent *models.Comment
		if len(comments) > 0 && f.faker.Bool() {
			parent = comments[f.faker.Number(0, len(comments)-1)]
			if parent.Depth >= models.MaxCommentDepth {
				parent = nil
			}
		}
		c, err := f.CreateComment(author, blog, parent)
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		comments = append(comments, c)
	}
	res.Comments += len(comments)

	for _, c := range comments {
		if f.faker.Float64Range(0, 1) >= s.opts.ReportedShare {
			continue
		}
		reporter := pick(f, users, 1, c.AuthorID)
		if len(reporter) == 0 {
			continue
		}
		if err := f.CreateReport(reporter[0], c); err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		res.Reports++
	}

	if s.opts.DryRun {
		return nil
	}
	score := engagement.TrendingScore(engagement.Signals{
		Likes:     likes,
		Comments:  len(comments),
		Views:     blog.Views,
		CreatedAt: blog.CreatedAt,
		Now:       f.now(),
	})
	return s.db.WithContext(ctx).Model(blog).Updates(map[string]any{
		"likes_count":    likes,
		"trending_score": score,
	}).Error
}

// pick returns up to n distinct users other than exclude.
func pick(f *Factory, users []*models.User, n int, exclude uint) []*models.User {
	out := make([]*models.User, 0, n)
	for _, i := range f.faker.Rand.Perm(len(users)) {
		if len(out) == n {
			break
		}
		if users[i].ID == exclude {
			continue
		}
		out = append(out, users[i])
	}
	return out
}
