package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	userPattern       = "user:*"
	TrendingKeyPrefix = "blogs:trending:%d"
	trendingPattern   = "blogs:trending:*"
	AnalyticsKey      = "admin:analytics"
)

const (
	UserTTL      = 5 * time.Minute
	TrendingTTL  = time.Minute
	AnalyticsTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func TrendingKey(limit int) string {
	return fmt.Sprintf(TrendingKeyPrefix, limit)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePattern deletes every key matching pattern using SCAN.
func InvalidatePattern(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	Invalidate(ctx, keys...)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateListings drops the derived listings a blog write can change.
func InvalidateListings(ctx context.Context) {
	Invalidate(ctx, AnalyticsKey)
	InvalidatePattern(ctx, trendingPattern)
}

// InvalidateAll drops every cached entity and listing. Revoked tokens are kept.
func InvalidateAll(ctx context.Context) {
	InvalidateListings(ctx)
	InvalidatePattern(ctx, userPattern)
}

func InvalidateAnalytics(ctx context.Context) {
	Invalidate(ctx, AnalyticsKey)
}
