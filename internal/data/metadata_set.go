package data

import (
	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// FieldMetadataSet is an ordered, name-keyed collection of FieldMetadata.
// Iteration order is the column order of the rendered output.
type FieldMetadataSet struct {
	fields []*FieldMetadata
	index  map[string]int
}

// NewFieldMetadataSet creates a set holding the given fields in order
func NewFieldMetadataSet(fields ...*FieldMetadata) *FieldMetadataSet {
	s := &FieldMetadataSet{index: make(map[string]int)}
	for _, f := range fields {
		// Duplicates in a literal constructor replace the earlier entry
		if s.Has(f.Name()) {
			s.fields[s.index[f.Name()]] = f
			continue
		}
		s.append(f)
	}
	return s
}

func (s *FieldMetadataSet) append(f *FieldMetadata) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[f.Name()] = len(s.fields)
	s.fields = append(s.fields, f)
}

func (s *FieldMetadataSet) reindex() {
	s.index = make(map[string]int, len(s.fields))
	for i, f := range s.fields {
		s.index[f.Name()] = i
	}
}

// Add appends a field. Names must be unique.
func (s *FieldMetadataSet) Add(f *FieldMetadata) error {
	if f.Name() == "" {
		return apperror.Developer(CodeNoFieldName, "field has no name")
	}
	if s.Has(f.Name()) {
		return apperror.Developer(CodeDuplicateField, "field %s already described", f.Name())
	}
	s.append(f)
	return nil
}

// InsertAfter places f directly after the field named after
func (s *FieldMetadataSet) InsertAfter(after string, f *FieldMetadata) error {
	if s.Has(f.Name()) {
		return apperror.Developer(CodeDuplicateField, "field %s already described", f.Name())
	}
	pos, ok := s.index[after]
	if !ok {
		return apperror.Developer(CodeNoSuchField, "cannot insert after unknown field %s", after)
	}
	s.fields = append(s.fields, nil)
	copy(s.fields[pos+2:], s.fields[pos+1:])
	s.fields[pos+1] = f
	s.reindex()
	return nil
}

// Remove deletes the named field, if present
func (s *FieldMetadataSet) Remove(name string) {
	pos, ok := s.index[name]
	if !ok {
		return
	}
	s.fields = append(s.fields[:pos], s.fields[pos+1:]...)
	s.reindex()
}

// Has reports whether the named field is described
func (s *FieldMetadataSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Get returns the named field
func (s *FieldMetadataSet) Get(name string) (*FieldMetadata, bool) {
	if s == nil {
		return nil, false
	}
	pos, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[pos], true
}

// Len returns the number of fields
func (s *FieldMetadataSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// IsEmpty reports whether the set describes no fields
func (s *FieldMetadataSet) IsEmpty() bool {
	return s.Len() == 0
}

// Fields returns the fields in order
func (s *FieldMetadataSet) Fields() []*FieldMetadata {
	if s == nil {
		return nil
	}
	out := make([]*FieldMetadata, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in order
func (s *FieldMetadataSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name()
	}
	return out
}

// ByType returns the fields whose type is one of types
func (s *FieldMetadataSet) ByType(types ...FieldType) []*FieldMetadata {
	var out []*FieldMetadata
	for _, f := range s.Fields() {
		for _, t := range types {
			if f.Type() == t {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Keys returns the fields marked as row identifiers
func (s *FieldMetadataSet) Keys() []*FieldMetadata {
	var out []*FieldMetadata
	for _, f := range s.Fields() {
		if f.IsKey() {
			out = append(out, f)
		}
	}
	return out
}

// Primary returns the first row identifier field
func (s *FieldMetadataSet) Primary() (*FieldMetadata, bool) {
	keys := s.Keys()
	if len(keys) == 0 {
		return nil, false
	}
	return keys[0], true
}

// Clone returns a deep copy
func (s *FieldMetadataSet) Clone() *FieldMetadataSet {
	out := &FieldMetadataSet{index: make(map[string]int)}
	for _, f := range s.Fields() {
		out.append(f.Clone())
	}
	return out
}

// Intersect reconciles s, the configured schema, with the schema actually
// returned by storage. Fields present in both are merged, fields missing from
// queried are marked as custom. The set is updated in place and returned.
// An empty configured schema is replaced by queried wholesale.
func (s *FieldMetadataSet) Intersect(queried *FieldMetadataSet) *FieldMetadataSet {
	if s.IsEmpty() {
		fields := queried.Fields()
		for i, f := range fields {
			fields[i] = f.Clone()
		}
		s.fields = fields
		s.reindex()
		return s
	}

	merged := make([]*FieldMetadata, len(s.fields))
	for i, configured := range s.fields {
		if q, ok := queried.Get(configured.Name()); ok {
			merged[i] = configured.merge(q)
			continue
		}
		custom := configured.Clone()
		custom.SetProperty(PropCustomField, "true")
		merged[i] = custom
	}
	s.fields = merged
	s.reindex()
	return s
}

// Intersect reconciles configured with queried, see FieldMetadataSet.Intersect
func Intersect(configured, queried *FieldMetadataSet) *FieldMetadataSet {
	if configured == nil {
		configured = NewFieldMetadataSet()
	}
	return configured.Intersect(queried)
}

// LoadMarkup appends every <field> child of el
func (s *FieldMetadataSet) LoadMarkup(el *etree.Element) error {
	if el == nil {
		return apperror.Developer(CodeBadFieldsMarkup, "no fields markup")
	}
	for _, child := range el.SelectElements("field") {
		f, err := FromMarkup(child)
		if err != nil {
			return err
		}
		if err := s.Add(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFieldsMarkup builds a set from a <fields> document
func ParseFieldsMarkup(markup string) (*FieldMetadataSet, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return nil, apperror.Developer(CodeBadFieldsMarkup, "fields markup does not parse").Wrap(err)
	}
	s := NewFieldMetadataSet()
	if err := s.LoadMarkup(doc.Root()); err != nil {
		return nil, err
	}
	return s, nil
}
