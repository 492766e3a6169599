package service

import (
	"context"
	"log/slog"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// StatusAll lifts the status filter for admins and for an author's own listing.
const StatusAll = "all"

// FeedService assembles visibility-filtered blog views.
type FeedService struct {
	blogs     repository.BlogRepository
	lifecycle *BlogService
}

// ListBlogsQuery are the public listing parameters.
type ListBlogsQuery struct {
	Status   string
	Category string
	Search   string
	AuthorID uint
	Sort     string
	PageRequest
}

// BlogPage is one page of blog summaries.
type BlogPage struct {
	Blogs      []BlogSummary `json:"blogs"`
	Pagination Pagination    `json:"pagination"`
}

func NewFeedService(blogs repository.BlogRepository, lifecycle *BlogService) *FeedService {
	return &FeedService{blogs: blogs, lifecycle: lifecycle}
}

// GetBlog returns the viewer's projection of a blog and counts the view when
// the viewer is not its author.
func (s *FeedService) GetBlog(ctx context.Context, blogID uint, viewer Actor) (*BlogView, error) {
	blog, err := s.blogs.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !BlogPermissions(viewer, blog).CanView {
		return nil, models.NewForbiddenError("This blog is not published")
	}

	if _, err := s.lifecycle.recordView(ctx, blog, viewer.UserID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record blog view",
			slog.Uint64("blog_id", uint64(blogID)), slog.String("error", err.Error()))
	}

	hasLiked := false
	if !viewer.Anonymous() {
		if hasLiked, err = s.blogs.IsLiked(ctx, blogID, viewer.UserID); err != nil {
			return nil, err
		}
	}
	view := ProjectBlog(viewer, blog, hasLiked)
	return &view, nil
}

// List pages over blogs visible to viewer.
func (s *FeedService) List(ctx context.Context, q ListBlogsQuery, viewer Actor) (*BlogPage, error) {
	statuses, err := visibleStatuses(q, viewer)
	if err != nil {
		return nil, err
	}
	sort, err := resolveSort(q.Sort, q.Search)
	if err != nil {
		return nil, err
	}

	req := q.PageRequest.normalize(0)
	blogs, total, err := s.blogs.List(ctx, repository.BlogQuery{
		Statuses: statuses,
		AuthorID: q.AuthorID,
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
		Sort:     sort,
		Page:     req.window(),
	})
	if err != nil {
		return nil, err
	}
	return &BlogPage{Blogs: SummarizeBlogs(blogs), Pagination: newPagination(req, total)}, nil
}

// Trending returns the top approved blogs by trending score. Results are
// cached briefly.
func (s *FeedService) Trending(ctx context.Context, limit int) ([]BlogSummary, error) {
	limit = PageRequest{Page: 1, Limit: limit}.normalize(0).Limit

	var out []BlogSummary
	err := cache.Aside(ctx, cache.TrendingKey(limit), &out, cache.TrendingTTL, func() error {
		blogs, _, err := s.blogs.List(ctx, repository.BlogQuery{
			Statuses: []models.BlogStatus{models.BlogStatusApproved},
			Sort:     repository.SortTrending,
			Page:     repository.Page{Limit: limit},
		})
		if err != nil {
			return err
		}
		out = SummarizeBlogs(blogs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Pending is the admin moderation queue, newest submissions first.
func (s *FeedService) Pending(ctx context.Context, admin Actor, req PageRequest) (*BlogPage, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	req = req.normalize(0)
	blogs, total, err := s.blogs.List(ctx, repository.BlogQuery{
		Statuses: []models.BlogStatus{models.BlogStatusPending},
		Sort:     repository.SortLatest,
		Page:     req.window(),
	})
	if err != nil {
		return nil, err
	}
	return &BlogPage{Blogs: SummarizeBlogs(blogs), Pagination: newPagination(req, total)}, nil
}

// visibleStatuses resolves the status filter. A nil result means no filter.
func visibleStatuses(q ListBlogsQuery, viewer Actor) ([]models.BlogStatus, error) {
	approved := []models.BlogStatus{models.BlogStatusApproved}
	ownListing := q.AuthorID != 0 && !viewer.Anonymous() && q.AuthorID == viewer.UserID

	if !viewer.IsAdmin() && !ownListing {
		return approved, nil
	}

	switch status := strings.ToLower(strings.TrimSpace(q.Status)); status {
	case "":
		if ownListing {
			return nil, nil
		}
		return approved, nil
	case StatusAll:
		return nil, nil
	default:
		s := models.BlogStatus(status)
		if !s.Valid() {
			return nil, models.NewValidationError("Invalid status filter")
		}
		return []models.BlogStatus{s}, nil
	}
}

func resolveSort(sort, search string) (string, error) {
	switch sort = strings.ToLower(strings.TrimSpace(sort)); sort {
	case "":
		if strings.TrimSpace(search) != "" {
			return repository.SortRelevance, nil
		}
		return repository.SortLatest, nil
	case repository.SortLatest, repository.SortTrending, repository.SortPopular, repository.SortRelevance:
		return sort, nil
	default:
		return "", models.NewValidationError("Invalid sort option")
	}
}
