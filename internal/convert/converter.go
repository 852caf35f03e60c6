package convert

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/cmsport/cmsport/internal/inference"
	"github.com/cmsport/cmsport/internal/logger"
	"github.com/cmsport/cmsport/internal/schema"
)

// TargetSchema is one generated entity schema.
type TargetSchema struct {
	Kind            string // "collectionType" or "singleType"
	CollectionName  string
	SingularName    string
	PluralName      string
	DisplayName     string
	DraftAndPublish bool
	Attributes      *orderedmap.OrderedMap[string, *TargetField]
}

// Catalog is the immutable-after-construction output of schema conversion:
// one schema per document type, one component per discovered embeddable
// shape, and the relationship lookup that produced the relation fields.
type Catalog struct {
	Schemas    map[string]*TargetSchema    // keyed by source type name
	Components map[string]*ComponentSchema // keyed by composite key
	Relations  *inference.Result

	// TypeOrder preserves the declaration order for deterministic output.
	TypeOrder []string
}

// Schema returns the target schema for a source type name, or nil.
func (c *Catalog) Schema(typeName string) *TargetSchema {
	return c.Schemas[typeName]
}

// Component returns the component schema for a composite key, or nil.
func (c *Catalog) Component(key string) *ComponentSchema {
	return c.Components[key]
}

// Converter maps recovered field types and inferred relationships into
// target schema representations.
type Converter struct {
	relations  *inference.Result
	objects    map[string]*schema.TypeDecl
	components map[string]*ComponentSchema
	logger     *logger.Logger
}

// NewConverter creates a Converter over the given inference result.
func NewConverter(relations *inference.Result, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Converter{
		relations:  relations,
		components: make(map[string]*ComponentSchema),
		logger:     log,
	}
}

// Convert produces a target schema for every document type declaration and
// a component schema for every embeddable shape encountered along the way.
func (c *Converter) Convert(decls []schema.TypeDecl) *Catalog {
	c.objects = make(map[string]*schema.TypeDecl)
	for i := range decls {
		if decls[i].Kind == schema.KindObject {
			c.objects[decls[i].Name] = &decls[i]
		}
	}

	catalog := &Catalog{
		Schemas:    make(map[string]*TargetSchema),
		Components: c.components,
		Relations:  c.relations,
	}

	for i := range decls {
		decl := &decls[i]
		if decl.Kind != schema.KindDocument {
			continue
		}
		catalog.Schemas[decl.Name] = c.convertType(decl)
		catalog.TypeOrder = append(catalog.TypeOrder, decl.Name)
	}

	c.logger.Infow("Schema conversion complete",
		"schemas", len(catalog.Schemas),
		"components", len(catalog.Components),
	)

	return catalog
}

// convertType builds the target schema for one document type. Singleton
// status comes solely from the recovery-time allowlist marker; observed
// document counts never promote a type.
func (c *Converter) convertType(decl *schema.TypeDecl) *TargetSchema {
	singular := Singularize(decl.Name)
	plural := Pluralize(singular)

	kind := "collectionType"
	if decl.Singleton {
		kind = "singleType"
	}

	title := decl.Title
	if title == "" {
		title = decl.Name
	}

	ts := &TargetSchema{
		Kind:            kind,
		CollectionName:  plural,
		SingularName:    singular,
		PluralName:      plural,
		DisplayName:     title,
		DraftAndPublish: true,
		Attributes:      orderedmap.NewOrderedMap[string, *TargetField](),
	}

	for i := range decl.Fields {
		field := &decl.Fields[i]
		ts.Attributes.Set(field.Name, c.convertField(decl.Name, field))
	}

	return ts
}

// convertField applies the conversion rules in priority order. A classified
// relationship overrides any other type-based inference for the field.
func (c *Converter) convertField(typeName string, field *schema.FieldDecl) *TargetField {
	if rel := c.relations.Relation(typeName, field.Name); rel != nil {
		return &TargetField{
			Kind:       KindRelation,
			Relation:   rel.Kind,
			Target:     rel.Target,
			MappedBy:   rel.MappedBy,
			InversedBy: rel.InversedBy,
			Required:   field.Validation.Required,
		}
	}

	if field.Opaque {
		return c.opaqueField(typeName, field)
	}

	switch field.Type {
	case "slug":
		source := field.Options.Source
		if source == "" {
			source = "title"
		}
		return &TargetField{
			Kind:        KindUID,
			TargetField: source,
			Required:    field.Validation.Required,
		}

	case "array":
		return c.convertArrayField(typeName, field)

	case "object":
		return c.componentField(field.Name, field.Fields, false, field.Validation.Required)

	case "image", "file":
		return &TargetField{
			Kind:         KindMedia,
			AllowedTypes: mediaAllowedTypes,
			Required:     field.Validation.Required,
		}
	}

	if obj, ok := c.objects[field.Type]; ok {
		return c.componentField(obj.Name, obj.Fields, false, field.Validation.Required)
	}

	if len(field.Options.List) > 0 {
		values := make([]string, 0, len(field.Options.List))
		for _, opt := range field.Options.List {
			values = append(values, opt.Value)
		}
		return &TargetField{
			Kind:     KindEnum,
			Enum:     values,
			Required: field.Validation.Required,
		}
	}

	if target, ok := primitiveTypes[field.Type]; ok {
		return &TargetField{
			Kind:     KindPrimitive,
			Type:     target,
			Required: field.Validation.Required,
			Min:      field.Validation.Min,
			Max:      field.Validation.Max,
		}
	}

	// Unrecognized kinds default to a generic string field.
	return &TargetField{
		Kind:     KindPrimitive,
		Type:     "string",
		Required: field.Validation.Required,
	}
}

// convertArrayField dispatches on the array's item types.
func (c *Converter) convertArrayField(typeName string, field *schema.FieldDecl) *TargetField {
	if len(field.Of) == 0 {
		return c.opaqueField(typeName, field)
	}

	item := field.Of[0]

	switch item.Type {
	case "image", "file":
		return &TargetField{
			Kind:         KindMedia,
			Multiple:     true,
			AllowedTypes: mediaAllowedTypes,
			Required:     field.Validation.Required,
		}

	case "block":
		return &TargetField{
			Kind:     KindRichText,
			Required: field.Validation.Required,
		}

	case "string":
		// Arrays of plain strings become a repeatable single-attribute component.
		return c.stringListComponent(field)

	case "reference":
		// A reference array that inference did not classify: fall back to an
		// opaque field rather than failing.
		return c.opaqueField(typeName, field)

	case "object":
		// Inline object items become a repeatable component named after the
		// owning field.
		return c.componentField(field.Name, item.Fields, true, field.Validation.Required)
	}

	if obj, ok := c.objects[item.Type]; ok {
		return c.componentField(obj.Name, obj.Fields, true, field.Validation.Required)
	}

	return c.opaqueField(typeName, field)
}

// componentField registers (or reuses) a component schema for the given
// name and nested fields and returns the attribute referencing it.
// De-duplication is by the derived composite key, not structural comparison.
func (c *Converter) componentField(name string, fields []schema.FieldDecl, repeatable, required bool) *TargetField {
	key := ComponentKey(name)
	if _, exists := c.components[key]; !exists {
		comp := newComponent(name)
		for i := range fields {
			field := &fields[i]
			comp.Attributes.Set(field.Name, c.convertComponentField(field))
		}
		c.components[key] = comp
	}
	return &TargetField{
		Kind:       KindComponent,
		Component:  key,
		Repeatable: repeatable,
		Required:   required,
	}
}

// stringListComponent synthesizes the shared single-attribute component used
// for arrays of plain strings.
func (c *Converter) stringListComponent(field *schema.FieldDecl) *TargetField {
	key := ComponentKey(field.Name)
	if _, exists := c.components[key]; !exists {
		comp := newComponent(field.Name)
		comp.Attributes.Set("value", &TargetField{Kind: KindPrimitive, Type: "string"})
		c.components[key] = comp
	}
	return &TargetField{
		Kind:       KindComponent,
		Component:  key,
		Repeatable: true,
		Required:   field.Validation.Required,
	}
}

// convertComponentField converts a field nested inside a component.
// Only primitives, media, and enums are supported at this nesting level;
// references, arrays, and further objects degrade to opaque fields.
func (c *Converter) convertComponentField(field *schema.FieldDecl) *TargetField {
	if field.Opaque {
		return &TargetField{Kind: KindOpaque}
	}

	switch field.Type {
	case "image", "file":
		return &TargetField{
			Kind:         KindMedia,
			AllowedTypes: mediaAllowedTypes,
			Required:     field.Validation.Required,
		}
	case "reference", "array", "object":
		return &TargetField{Kind: KindOpaque}
	}

	if len(field.Options.List) > 0 {
		values := make([]string, 0, len(field.Options.List))
		for _, opt := range field.Options.List {
			values = append(values, opt.Value)
		}
		return &TargetField{Kind: KindEnum, Enum: values, Required: field.Validation.Required}
	}

	if target, ok := primitiveTypes[field.Type]; ok {
		return &TargetField{
			Kind:     KindPrimitive,
			Type:     target,
			Required: field.Validation.Required,
			Min:      field.Validation.Min,
			Max:      field.Validation.Max,
		}
	}

	return &TargetField{Kind: KindPrimitive, Type: "string", Required: field.Validation.Required}
}

// opaqueField logs and emits the structured fallback for fields the
// converter cannot classify.
func (c *Converter) opaqueField(typeName string, field *schema.FieldDecl) *TargetField {
	c.logger.Warnw("Falling back to opaque field",
		"type", typeName,
		"field", field.Name,
		"source_type", field.Type,
	)
	return &TargetField{Kind: KindOpaque}
}
