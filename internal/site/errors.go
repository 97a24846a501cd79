package site

// Error codes
const (
	CodeNoSuchTable  = "ERR_NO_SUCH_TABLE"
	CodeNoSuchRecord = "ERR_NO_SUCH_RECORD"
	CodeNoStore      = "ERR_DEV_NO_STORE"
)
