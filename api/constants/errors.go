package constants

import "fmt"

// ============================================================================
// AUTHENTICATION & SESSION ERRORS
// ============================================================================

const (
	ErrMaxUsers = "Maximum concurrent users reached"
)

// ============================================================================
// VALIDATION ERRORS - Forms
// ============================================================================

const (
	ErrAmountRequired    = "Either income or expense must be provided"
	ErrDateRequired      = "Date is required"
	ErrPersonRequired    = "Person name is required"
	ErrModeRequired      = "Payment mode is required"
	ErrGroupRequired     = "Group head is required"
	ErrPayToRequired     = "Pay-to is required"
	ErrVendorRequired    = "Vendor name is required"
	ErrOptionEmpty       = "Option value cannot be empty"
	ErrUnknownVocabulary = "Unknown master vocabulary"
	ErrNoRowsSelected    = "No rows selected"
	ErrUnknownDimension  = "Unknown grouping dimension"
)

// FormatMissingFieldError builds a consistent message for a required field.
func FormatMissingFieldError(field string) string {
	return fmt.Sprintf("%s is required", field)
}

// FormatFieldError builds a consistent message for an invalid field value.
func FormatFieldError(field, problem string) string {
	return fmt.Sprintf("%s %s", field, problem)
}
