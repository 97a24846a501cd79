package commands

// Error codes reported by the commands
const (
	CodeUnknownBuilder = "ERR_DEV_UNKNOWN_BUILDER"
	CodeNoParentField  = "ERR_DEV_NO_PARENT_FIELD"
	CodeNoDatabase     = "ERR_DEV_NO_DATABASE"
	CodeNoSuchRecord   = "ERR_NO_SUCH_RECORD"
)
