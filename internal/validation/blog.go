// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinTitleLength        = 10
	MaxTitleLength        = 200
	MinContentLength      = 100
	MaxCategoryLength     = 50
	MaxTags               = 10
	MinRejectionLength    = 10
	MaxRejectionLength    = 500
	MaxAdminNotesLength   = 1000
	MaxCommentLength      = 500
	MaxReportReasonLength = 500
)

var featuredImageRegex = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ValidateBlogTitle checks the trimmed title length.
func ValidateBlogTitle(title string) error {
	n := runeLen(title)
	if n < MinTitleLength || n > MaxTitleLength {
		return fmt.Errorf("title must be between %d-%d characters", MinTitleLength, MaxTitleLength)
	}
	return nil
}

// ValidateBlogContent checks the trimmed content length.
func ValidateBlogContent(content string) error {
	if runeLen(content) < MinContentLength {
		return fmt.Errorf("content must be at least %d characters", MinContentLength)
	}
	return nil
}

// ValidateCategory checks the optional category length.
func ValidateCategory(category string) error {
	if runeLen(category) > MaxCategoryLength {
		return fmt.Errorf("category cannot exceed %d characters", MaxCategoryLength)
	}
	return nil
}

// ValidateTags checks the tag count.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("maximum %d tags allowed", MaxTags)
	}
	return nil
}

// ValidateFeaturedImage accepts an empty value or an http(s) image URL.
func ValidateFeaturedImage(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if !featuredImageRegex.MatchString(url) {
		return fmt.Errorf("featured image must be a valid image URL (jpg, jpeg, png, gif, webp)")
	}
	return nil
}

// ValidateRejectionReason requires a reason of bounded length.
func ValidateRejectionReason(reason string) error {
	n := runeLen(reason)
	if n == 0 {
		return fmt.Errorf("rejection reason is required")
	}
	if n < MinRejectionLength || n > MaxRejectionLength {
		return fmt.Errorf("rejection reason must be between %d-%d characters", MinRejectionLength, MaxRejectionLength)
	}
	return nil
}

// ValidateAdminNotes checks the optional moderator notes length.
func ValidateAdminNotes(notes string) error {
	if runeLen(notes) > MaxAdminNotesLength {
		return fmt.Errorf("admin notes cannot exceed %d characters", MaxAdminNotesLength)
	}
	return nil
}

// NormalizeTags trims tags, lowercases them and drops empty or repeated entries.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
