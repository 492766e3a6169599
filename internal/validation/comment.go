package validation

import "fmt"

// ValidateCommentContent checks the trimmed comment length.
func ValidateCommentContent(content string) error {
	n := runeLen(content)
	if n < 1 || n > MaxCommentLength {
		return fmt.Errorf("comment must be between 1-%d characters", MaxCommentLength)
	}
	return nil
}

// ValidateReportReason checks the optional report reason length.
func ValidateReportReason(reason string) error {
	if runeLen(reason) > MaxReportReasonLength {
		return fmt.Errorf("report reason cannot exceed %d characters", MaxReportReasonLength)
	}
	return nil
}
