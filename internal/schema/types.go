// Package schema recovers entity type declarations from a directory of
// declarative schema-definition sources.
package schema

// Kind classifies a recovered type declaration.
type Kind string

const (
	// KindDocument is an independently-addressable content type.
	KindDocument Kind = "document"
	// KindObject is an embeddable shape reused inside documents.
	KindObject Kind = "object"
)

// EnumOption is one entry of an options list (the enumeration domain).
type EnumOption struct {
	Title string
	Value string
}

// Validation holds constraints detected on a field declaration.
type Validation struct {
	Required bool
	Min      *float64
	Max      *float64
}

// Options holds the options block of a field declaration: either a source
// property for slug-like derivation or a list of enumerable values.
type Options struct {
	Source string
	List   []EnumOption
}

// ItemDecl describes one item-type descriptor of an array field.
type ItemDecl struct {
	Type   string
	To     []string    // reference targets when Type is "reference"
	Fields []FieldDecl // nested fields when Type is an inline "object"
}

// FieldDecl is one field on a recovered entity type.
type FieldDecl struct {
	Name       string
	Type       string
	Title      string
	Validation Validation
	Options    Options
	Of         []ItemDecl  // array item descriptors
	To         []string    // reference target type names
	Fields     []FieldDecl // nested fields for object types
	Opaque     bool        // set when the declaration could not be parsed
}

// TypeDecl is a recovered document or object type declaration.
// Declarations are immutable after recovery.
type TypeDecl struct {
	Name      string
	Kind      Kind
	Title     string
	Fields    []FieldDecl
	Singleton bool
}

// IsReference reports whether the field is a direct reference to another type.
func (f *FieldDecl) IsReference() bool {
	return f.Type == "reference" && len(f.To) > 0
}

// ReferenceItems returns the reference item descriptors of an array field.
func (f *FieldDecl) ReferenceItems() []ItemDecl {
	var refs []ItemDecl
	for _, item := range f.Of {
		if item.Type == "reference" && len(item.To) > 0 {
			refs = append(refs, item)
		}
	}
	return refs
}
