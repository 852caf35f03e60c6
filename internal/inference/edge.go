package inference

import "github.com/cmsport/cmsport/internal/schema"

// Edge is one directed reference from a field to a target type.
type Edge struct {
	SourceType string
	FieldName  string
	TargetType string
	IsArray    bool
}

// CollectEdges extracts the outgoing reference edges of every document type.
// A reference field has exactly one declared target type in this model, so
// only the first target is considered. Reference fields whose target cannot
// be determined are excluded from classification (they later fall back to
// opaque fields during conversion).
func CollectEdges(decls []schema.TypeDecl) []Edge {
	var edges []Edge
	for _, decl := range decls {
		if decl.Kind != schema.KindDocument {
			continue
		}
		for _, field := range decl.Fields {
			if field.Opaque {
				continue
			}
			if field.IsReference() {
				edges = append(edges, Edge{
					SourceType: decl.Name,
					FieldName:  field.Name,
					TargetType: field.To[0],
					IsArray:    false,
				})
				continue
			}
			if field.Type == "array" {
				refs := field.ReferenceItems()
				if len(refs) == 0 {
					continue
				}
				edges = append(edges, Edge{
					SourceType: decl.Name,
					FieldName:  field.Name,
					TargetType: refs[0].To[0],
					IsArray:    true,
				})
			}
		}
	}
	return edges
}
