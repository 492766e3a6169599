package service

import (
	"context"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	recentActivityWindow = 7 * 24 * time.Hour
	dashboardTopN        = 5
)

// DashboardService aggregates moderation statistics for admins.
type DashboardService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

// Overview holds the headline counts of the dashboard.
type Overview struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveUsers      int64 `json:"active_users"`
	InactiveUsers    int64 `json:"inactive_users"`
	TotalBlogs       int64 `json:"total_blogs"`
	DraftBlogs       int64 `json:"draft_blogs"`
	PendingBlogs     int64 `json:"pending_blogs"`
	ApprovedBlogs    int64 `json:"approved_blogs"`
	RejectedBlogs    int64 `json:"rejected_blogs"`
	HiddenBlogs      int64 `json:"hidden_blogs"`
	TotalComments    int64 `json:"total_comments"`
	ActiveComments   int64 `json:"active_comments"`
	DeletedComments  int64 `json:"deleted_comments"`
	ReportedComments int64 `json:"reported_comments"`
}

// Analytics is the full dashboard payload.
type Analytics struct {
	Overview       Overview                  `json:"overview"`
	RecentActivity repository.RecentActivity `json:"recent_activity"`
	TopAuthors     []repository.AuthorStat   `json:"top_authors"`
	PopularBlogs   []BlogSummary             `json:"popular_blogs"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}

func NewDashboardService(stats repository.StatsRepository) *DashboardService {
	return &DashboardService{stats: stats, now: time.Now}
}

// Analytics returns the dashboard, served from cache for up to AnalyticsTTL.
func (s *DashboardService) Analytics(ctx context.Context, admin Actor) (*Analytics, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	var out Analytics
	if err := cache.Aside(ctx, cache.AnalyticsKey, &out, cache.AnalyticsTTL, func() error {
		fresh, err := s.compute(ctx)
		if err != nil {
			return err
		}
		out = *fresh
		return nil
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) compute(ctx context.Context) (*Analytics, error) {
	users, err := s.stats.UserCounts(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.stats.BlogCountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.stats.CommentCounts(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	recent, err := s.stats.RecentActivity(ctx, now.Add(-recentActivityWindow))
	if err != nil {
		return nil, err
	}
	authors, err := s.stats.TopAuthors(ctx, dashboardTopN)
	if err != nil {
		return nil, err
	}
	popular, err := s.stats.PopularBlogs(ctx, dashboardTopN)
	if err != nil {
		return nil, err
	}

	var totalBlogs int64
	for _, n := range byStatus {
		totalBlogs += n
	}
	if authors == nil {
		authors = []repository.AuthorStat{}
	}

	return &Analytics{
		Overview: Overview{
			TotalUsers:       users.Total,
			ActiveUsers:      users.Active,
			InactiveUsers:    users.Inactive,
			TotalBlogs:       totalBlogs,
			DraftBlogs:       byStatus[models.BlogStatusDraft],
			PendingBlogs:     byStatus[models.BlogStatusPending],
			ApprovedBlogs:    byStatus[models.BlogStatusApproved],
			RejectedBlogs:    byStatus[models.BlogStatusRejected],
			HiddenBlogs:      byStatus[models.BlogStatusHidden],
			TotalComments:    comments.Total,
			ActiveComments:   comments.Active,
			DeletedComments:  comments.Deleted,
			ReportedComments: comments.Reported,
		},
		RecentActivity: recent,
		TopAuthors:     authors,
		PopularBlogs:   SummarizeBlogs(popular),
		GeneratedAt:    now,
	}, nil
}
