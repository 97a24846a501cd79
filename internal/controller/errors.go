package controller

// Error codes returned by this package
const (
	CodeNoLayout      = "ERR_DEV_NO_LAYOUT"
	CodeTransformFail = "ERR_TRANSFORM"
)
