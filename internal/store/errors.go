package store

// Error codes returned by this package
const (
	CodeReadOnly      = "ERR_READ_ONLY"
	CodeBadIdentifier = "ERR_DEV_BAD_IDENTIFIER"
	CodeBadOperation  = "ERR_DEV_BAD_OPERATION"
	CodeNoValues      = "ERR_DEV_NO_VALUES"
	CodeNoCriteria    = "ERR_DEV_NO_CRITERIA"
	CodeUnknownDriver = "ERR_DEV_UNKNOWN_DRIVER"
	CodeQuery         = "ERR_DATABASE_QUERY"
	CodeNoTable       = "ERR_DEV_NO_TABLE"
)
