package transform

// Error codes returned by this package
const (
	CodeXMLSerialize = "ERR_XML_SERIALIZE"
	CodeEmptyJSON    = "ERR_EMPTY_JSON"
	CodeInvalidJSON  = "ERR_BAD_JSON"
	CodeTemplate     = "ERR_TEMPLATE"
)
