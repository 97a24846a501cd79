package transform

// ViewMode is the output representation selected for a request
type ViewMode int

const (
	ModeHTML ViewMode = iota
	ModeDebugXML
	ModeStructureXML
	ModeJSON
	// ModeEmpty is reserved and never produced by resolution
	ModeEmpty
)

// String returns the mode name
func (m ViewMode) String() string {
	switch m {
	case ModeHTML:
		return "html"
	case ModeDebugXML:
		return "debug_xml"
	case ModeStructureXML:
		return "structure_xml"
	case ModeJSON:
		return "json"
	case ModeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Set holds one transformer per output family
type Set struct {
	XML  Transformer
	JSON Transformer
	HTML Transformer
}

// ForMode selects the transformer of a view mode: JSON for JSON mode, raw XML
// for the XML modes and the stylesheet for everything else
func (s Set) ForMode(m ViewMode) Transformer {
	switch m {
	case ModeJSON:
		return s.JSON
	case ModeDebugXML, ModeStructureXML:
		return s.XML
	default:
		return s.HTML
	}
}
