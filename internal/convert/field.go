// Package convert maps recovered type declarations and inferred
// relationships into target schema representations.
package convert

// FieldKind is the closed set of target field variants. Every consumer
// dispatches on it explicitly.
type FieldKind string

const (
	KindPrimitive FieldKind = "primitive"
	KindMedia     FieldKind = "media"
	KindRelation  FieldKind = "relation"
	KindComponent FieldKind = "component"
	KindEnum      FieldKind = "enum"
	KindUID       FieldKind = "uid"
	KindRichText  FieldKind = "richtext"
	KindOpaque    FieldKind = "opaque"
)

// TargetField is one converted field ready for the target schema.
type TargetField struct {
	Kind FieldKind

	// Type is the target platform's attribute type name ("string", "text",
	// "decimal", ...). Set for primitive fields; derived for the rest.
	Type string

	Required bool
	Min      *float64
	Max      *float64

	// Relation metadata (KindRelation).
	Relation   string // oneToOne, oneToMany, manyToOne, manyToMany
	Target     string // target entity type name
	MappedBy   string
	InversedBy string

	// Component metadata (KindComponent).
	Component  string // composite component key (category.name)
	Repeatable bool

	// Enumeration domain (KindEnum).
	Enum []string

	// UID source attribute (KindUID).
	TargetField string

	// Media metadata (KindMedia).
	Multiple     bool
	AllowedTypes []string
}

// IsArrayRelation reports whether a relation field holds many target ids.
func (f *TargetField) IsArrayRelation() bool {
	return f.Relation == "oneToMany" || f.Relation == "manyToMany"
}

// mediaAllowedTypes is the full set of media kinds a media field accepts.
var mediaAllowedTypes = []string{"images", "files", "videos", "audios"}

// primitiveTypes maps recognized source primitive kinds to target attribute
// types. Unrecognized kinds default to a generic string field.
var primitiveTypes = map[string]string{
	"string":   "string",
	"text":     "text",
	"number":   "decimal",
	"boolean":  "boolean",
	"datetime": "datetime",
	"date":     "date",
	"url":      "string",
	"email":    "email",
}
