package constants

// Common error messages
const (
	ErrInvalidSession     = "invalid user_id or session"
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrUserIDRequired     = "user_id required"
	ErrInvalidCredentials = "Invalid Username or Password"
	ErrAdminOnly          = "This action requires an admin account"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrUploadFailed       = "File upload failed"
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
)

// Date formats
const (
	TimestampFormat      = "02/01/2006 15:04:05"
	RequestStampFormat   = "2006-01-02 15:04:05"
	SheetDateFormat      = "02/01/2006"
	ISODateFormat        = "2006-01-02"
	MonthLabelFormat     = "January 2006"
	ReceivingStampLayout = "02/01/2006 15:04:05"
)

// Response keys
const (
	ValueSuccess = "success"
	ValueError   = "error"
)
