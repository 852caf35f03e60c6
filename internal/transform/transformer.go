// Package transform converts source documents into target entity payloads
// using the converted schema catalog, deferring relationship fields.
package transform

import (
	"fmt"
	"time"

	"github.com/cmsport/cmsport/internal/convert"
	"github.com/cmsport/cmsport/internal/logger"
	"github.com/cmsport/cmsport/internal/source"
	"github.com/cmsport/cmsport/internal/state"
)

// ErrSchemaMissing aborts a single document whose type has no target schema.
type ErrSchemaMissing struct {
	Type string
}

func (e *ErrSchemaMissing) Error() string {
	return fmt.Sprintf("no target schema for type %q", e.Type)
}

// Transformer produces target entity payloads field-by-field. Relation
// fields are never materialized inline; they are appended to the run's
// pending-relationship queue instead.
type Transformer struct {
	catalog *convert.Catalog
	state   *state.State
	logger  *logger.Logger

	// now is the publish-timestamp clock, replaceable in tests.
	now func() time.Time
}

// New creates a Transformer over the given catalog and run state.
func New(catalog *convert.Catalog, st *state.State, log *logger.Logger) *Transformer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Transformer{
		catalog: catalog,
		state:   st,
		logger:  log,
		now:     time.Now,
	}
}

// Transform converts one source document against its target schema.
// A single field's failure is logged and the field skipped; only a missing
// schema fails the document.
func (t *Transformer) Transform(doc source.Document) (map[string]interface{}, error) {
	schema := t.catalog.Schema(doc.Type)
	if schema == nil {
		return nil, &ErrSchemaMissing{Type: doc.Type}
	}

	log := t.logger.WithType(doc.Type).WithDocument(doc.ID)
	data := make(map[string]interface{})

	for el := schema.Attributes.Front(); el != nil; el = el.Next() {
		fieldName := el.Key
		attr := el.Value

		value, present := doc.Fields[fieldName]
		if !present || value == nil {
			continue
		}

		converted, include, err := t.transformField(doc, fieldName, attr, value)
		if err != nil {
			log.Warnw("Field transform failed, skipping field",
				"field", fieldName, "error", err)
			continue
		}
		if include {
			data[fieldName] = converted
		}
	}

	t.warnDroppedFields(doc, schema, log)
	t.stampPublished(doc, data)

	return data, nil
}

// transformField dispatches on the target field's type tag. The second
// return is false when the field must be omitted from the payload (relation
// fields and unresolved media).
func (t *Transformer) transformField(doc source.Document, fieldName string, attr *convert.TargetField, value interface{}) (interface{}, bool, error) {
	switch attr.Kind {
	case convert.KindRelation:
		t.deferRelations(doc, fieldName, attr, value)
		return nil, false, nil

	case convert.KindUID:
		return slugValue(value), true, nil

	case convert.KindMedia:
		resolved := t.resolveMedia(doc.Type, fieldName, value, attr.Multiple)
		if resolved == nil {
			return nil, false, nil
		}
		return resolved, true, nil

	case convert.KindRichText:
		return ConvertBlocks(value), true, nil

	case convert.KindComponent:
		comp := t.catalog.Component(attr.Component)
		if comp == nil {
			return nil, false, fmt.Errorf("component %q not in catalog", attr.Component)
		}
		return t.transformComponentValue(doc.Type, fieldName, comp, attr.Repeatable, value)

	case convert.KindPrimitive, convert.KindEnum, convert.KindOpaque:
		return value, true, nil
	}

	return nil, false, fmt.Errorf("unhandled field kind %q", attr.Kind)
}

// deferRelations appends every reference found in the raw value to the
// pending-relationship queue. The field itself never enters the payload.
func (t *Transformer) deferRelations(doc source.Document, fieldName string, attr *convert.TargetField, value interface{}) {
	for _, targetID := range referenceIDs(value) {
		t.state.Defer(state.PendingRelation{
			SourceType:     doc.Type,
			SourceID:       doc.ID,
			FieldName:      fieldName,
			TargetSourceID: targetID,
			IsArray:        attr.IsArrayRelation(),
			Kind:           attr.Relation,
		})
	}
}

// referenceIDs extracts target document ids from a direct reference or an
// array of references.
func referenceIDs(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		items = []interface{}{value}
	}
	var ids []string
	for _, item := range items {
		ref, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if id, _ := ref["_ref"].(string); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// slugValue extracts the current value from a structured slug object;
// anything else passes through unchanged.
func slugValue(value interface{}) interface{} {
	if m, ok := value.(map[string]interface{}); ok {
		if current, ok := m["current"].(string); ok {
			return current
		}
	}
	return value
}

// transformComponentValue transforms a nested object (or each item when
// repeatable) against its component schema. Items that transform to an
// empty attribute set are dropped rather than emitted as empty objects.
func (t *Transformer) transformComponentValue(typeName, fieldName string, comp *convert.ComponentSchema, repeatable bool, value interface{}) (interface{}, bool, error) {
	if !repeatable {
		item := t.transformComponentItem(typeName, fieldName, comp, value)
		if item == nil {
			return nil, false, nil
		}
		return item, true, nil
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, false, fmt.Errorf("repeatable component value is not a list")
	}

	var converted []map[string]interface{}
	for _, raw := range items {
		if item := t.transformComponentItem(typeName, fieldName, comp, raw); item != nil {
			converted = append(converted, item)
		}
	}
	if len(converted) == 0 {
		return nil, false, nil
	}
	return converted, true, nil
}

// transformComponentItem applies the field-dispatch rules restricted to
// primitives and media. Plain strings are wrapped into the synthesized
// single-attribute component shape.
func (t *Transformer) transformComponentItem(typeName, fieldName string, comp *convert.ComponentSchema, value interface{}) map[string]interface{} {
	if s, ok := value.(string); ok {
		if _, exists := comp.Attributes.Get("value"); exists {
			return map[string]interface{}{"value": s}
		}
		return nil
	}

	raw, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}

	item := make(map[string]interface{})
	for el := comp.Attributes.Front(); el != nil; el = el.Next() {
		v, present := raw[el.Key]
		if !present || v == nil {
			continue
		}
		switch el.Value.Kind {
		case convert.KindMedia:
			if resolved := t.resolveMedia(typeName, fieldName+"."+el.Key, v, el.Value.Multiple); resolved != nil {
				item[el.Key] = resolved
			}
		case convert.KindPrimitive, convert.KindEnum, convert.KindOpaque:
			item[el.Key] = v
		}
	}

	if len(item) == 0 {
		return nil
	}
	return item
}

// warnDroppedFields logs document fields that have no schema attribute.
// Dropping is silent success, never a failure.
func (t *Transformer) warnDroppedFields(doc source.Document, schema *convert.TargetSchema, log *logger.Logger) {
	for name := range doc.ContentFields() {
		if _, exists := schema.Attributes.Get(name); !exists {
			log.Warnw("Dropping field absent from target schema", "field", name)
		}
	}
}

// stampPublished ensures the entity is created in a published state: when
// neither the source document nor the payload carries a publish timestamp,
// the current time is stamped.
func (t *Transformer) stampPublished(doc source.Document, data map[string]interface{}) {
	if _, ok := data["publishedAt"]; ok {
		return
	}
	if published, ok := doc.Fields["publishedAt"].(string); ok && published != "" {
		data["publishedAt"] = published
		return
	}
	if created := doc.CreatedAt(); created != "" {
		data["publishedAt"] = created
		return
	}
	data["publishedAt"] = t.now().UTC().Format(time.RFC3339)
}
