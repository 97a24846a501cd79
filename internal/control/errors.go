package control

// Error codes returned by this package
const (
	CodeNoType          = "ERR_DEV_NO_CONTROL_TYPE"
	CodeNoClass         = "ERR_DEV_NO_CONTROL_CLASS"
	CodeNoIndex         = "ERR_DEV_NO_CONTROL_INDEX"
	CodeDuplicateID     = "ERR_DEV_DUPLICATE_CONTROL"
	CodeNoSuchControl   = "ERR_DEV_NO_SUCH_CONTROL"
	CodeBadRegistration = "ERR_DEV_BAD_CONTROL_REGISTRATION"
	CodeNotToolbar      = "ERR_DEV_NOT_A_TOOLBAR"
)
