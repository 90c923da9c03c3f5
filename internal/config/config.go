package config

const (
	// Sheet names as they exist in the remote workbook. "Reciving" is spelled
	// that way in the sheet itself.
	LoginSheet     = "Login"
	MasterSheet    = "Master"
	DataSheet      = "Data"
	RequestSheet   = "Request"
	ReceivingSheet = "Reciving"

	// Header rows occupy the leading rows of each sheet; data starts after them.
	LoginHeaderRows     = 1
	MasterHeaderRows    = 1
	DataHeaderRows      = 1
	RequestHeaderRows   = 6
	ReceivingHeaderRows = 1

	// Master Refresh Configuration Constants
	DefaultMasterRefreshSchedule = "*/15 * * * *"
	DefaultTimeZone              = "Asia/Kolkata"
)
