package repo

// Error codes
const (
	CodeReadOnly    = "ERR_READ_ONLY"
	CodeOutsideRoot = "ERR_PATH_OUTSIDE_ROOT"
	CodeNotFound    = "ERR_FILE_NOT_FOUND"
	CodeExists      = "ERR_FILE_EXISTS"
	CodeIO          = "ERR_FILE_IO"
	CodeNoRoot      = "ERR_DEV_NO_REPOSITORY_ROOT"
)
