package builder

// Error codes returned by this package
const (
	CodeNoDataDescription = "ERR_DEV_NO_DATA_DESCRIPTION"
	CodeNoKeyField        = "ERR_DEV_NO_KEY_FIELD"
	CodeManyKeyFields     = "ERR_DEV_MANY_KEY_FIELDS"
	CodeAlreadyBuilt      = "ERR_DEV_ALREADY_BUILT"
	CodeJSONEncode        = "ERR_JSON_ENCODE"
)
