package data

// Error codes returned by this package
const (
	CodeNoFieldName     = "ERR_DEV_NO_FIELD_NAME"
	CodeBadFieldType    = "ERR_DEV_BAD_FIELD_TYPE"
	CodeDuplicateField  = "ERR_DEV_DUPLICATE_FIELD"
	CodeNoSuchField     = "ERR_DEV_NO_SUCH_FIELD"
	CodeRowCount        = "ERR_DEV_ROW_COUNT_MISMATCH"
	CodeRowOutOfRange   = "ERR_DEV_ROW_OUT_OF_RANGE"
	CodeBadFieldsMarkup = "ERR_DEV_BAD_FIELDS_MARKUP"
)
