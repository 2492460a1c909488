package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeInvalidCategory = "invalid_category"

	// Resource errors
	ErrCodeNotFound         = "not_found"
	ErrCodeCategoryNotFound = "category_not_found"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"

	// Feature availability
	ErrCodeFeatureNotAvailable = "feature_not_available"

	// Score persistence
	ErrCodeScoreSaveFailed = "score_save_failed"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed  = "leaderboard_fetch_failed"
	ErrCodeLeaderboardExportFailed = "leaderboard_export_failed"
)
