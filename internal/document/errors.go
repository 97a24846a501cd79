package document

// Error codes returned by this package
const (
	CodeNotFound        = "ERR_404"
	CodeNoComponents    = "ERR_DEV_NO_COMPONENTS"
	CodeComponentFailed = "ERR_COMPONENT_FAILED"
	CodeInternal        = "ERR_INTERNAL"
	CodeNoJSONNode      = "ERR_NO_JSON_NODE"
)
