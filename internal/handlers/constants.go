package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgInvalidReviewID    = "Invalid review ID"
	ErrMsgInvalidSheetID     = "Invalid sheet ID"
	ErrMsgInvalidUserID      = "Invalid user ID"
	ErrMsgInvalidJobRoleID   = "Invalid job role ID"
	ErrMsgInvalidCriteriaID  = "Invalid criteria ID"
)
