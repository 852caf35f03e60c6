package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/cmsport/cmsport/internal/logger"
)

// Writer emits the converted catalog as target platform artifacts: one
// schema file per entity type, one per component, and the boilerplate
// resource-handler stubs the platform needs to recognize each type.
type Writer struct {
	outDir string
	logger *logger.Logger
}

// NewWriter creates a Writer rooted at outDir.
func NewWriter(outDir string, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Writer{outDir: outDir, logger: log}
}

// WriteAll writes every schema, component, and stub in the catalog.
func (w *Writer) WriteAll(catalog *Catalog) error {
	for _, typeName := range catalog.TypeOrder {
		if err := w.WriteSchema(catalog.Schemas[typeName]); err != nil {
			return fmt.Errorf("failed to write schema for %s: %w", typeName, err)
		}
	}

	keys := make([]string, 0, len(catalog.Components))
	for key := range catalog.Components {
		keys = append(keys, key)
	}
	// Map order is random; sort for stable output.
	sort.Strings(keys)

	for _, key := range keys {
		if err := w.WriteComponent(catalog.Components[key]); err != nil {
			return fmt.Errorf("failed to write component %s: %w", key, err)
		}
	}

	w.logger.Infow("Schema artifacts written",
		"dir", w.outDir,
		"schemas", len(catalog.Schemas),
		"components", len(catalog.Components),
	)

	return nil
}

// WriteSchema writes one entity schema plus its handler stubs under the
// conventional per-type directory.
func (w *Writer) WriteSchema(ts *TargetSchema) error {
	apiDir := filepath.Join(w.outDir, "api", ts.SingularName)

	schemaDir := filepath.Join(apiDir, "content-types", ts.SingularName)
	if err := os.MkdirAll(schemaDir, 0755); err != nil {
		return err
	}

	doc := schemaDocument{
		Kind:           ts.Kind,
		CollectionName: ts.CollectionName,
		Info: schemaInfo{
			SingularName: ts.SingularName,
			PluralName:   ts.PluralName,
			DisplayName:  ts.DisplayName,
		},
		Options:    schemaOptions{DraftAndPublish: ts.DraftAndPublish},
		Attributes: orderedAttributes{ts.Attributes},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(schemaDir, "schema.json"), append(data, '\n'), 0644); err != nil {
		return err
	}

	uid := EntityUID(ts.SingularName)
	for dir, factory := range map[string]string{
		"controllers": "createCoreController",
		"routes":      "createCoreRouter",
		"services":    "createCoreService",
	} {
		stubDir := filepath.Join(apiDir, dir)
		if err := os.MkdirAll(stubDir, 0755); err != nil {
			return err
		}
		stub := fmt.Sprintf("'use strict';\n\nmodule.exports = require('@strapi/strapi').factories.%s('%s');\n", factory, uid)
		if err := os.WriteFile(filepath.Join(stubDir, ts.SingularName+".js"), []byte(stub), 0644); err != nil {
			return err
		}
	}

	return nil
}

// WriteComponent writes one component schema under its category directory.
func (w *Writer) WriteComponent(comp *ComponentSchema) error {
	dir := filepath.Join(w.outDir, "components", comp.Category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	doc := componentDocument{
		CollectionName: fmt.Sprintf("components_%s_%s", comp.Category, Pluralize(comp.Name)),
		Info:           componentInfo{DisplayName: comp.DisplayName},
		Attributes:     orderedAttributes{comp.Attributes},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, comp.Name+".json"), append(data, '\n'), 0644)
}

// EntityUID returns the target platform identifier for an entity type.
func EntityUID(singular string) string {
	return fmt.Sprintf("api::%s.%s", singular, singular)
}

type schemaDocument struct {
	Kind           string            `json:"kind"`
	CollectionName string            `json:"collectionName"`
	Info           schemaInfo        `json:"info"`
	Options        schemaOptions     `json:"options"`
	Attributes     orderedAttributes `json:"attributes"`
}

type schemaInfo struct {
	SingularName string `json:"singularName"`
	PluralName   string `json:"pluralName"`
	DisplayName  string `json:"displayName"`
}

type schemaOptions struct {
	DraftAndPublish bool `json:"draftAndPublish"`
}

type componentDocument struct {
	CollectionName string            `json:"collectionName"`
	Info           componentInfo     `json:"info"`
	Attributes     orderedAttributes `json:"attributes"`
}

type componentInfo struct {
	DisplayName string `json:"displayName"`
}

// orderedAttributes marshals the attribute map preserving declaration order.
type orderedAttributes struct {
	m *orderedmap.OrderedMap[string, *TargetField]
}

func (a orderedAttributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for el := a.m.Front(); el != nil; el = el.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(el.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(AttributeMap(el.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AttributeMap renders a target field as the platform's attribute object.
func AttributeMap(f *TargetField) map[string]interface{} {
	attr := make(map[string]interface{})

	switch f.Kind {
	case KindPrimitive:
		attr["type"] = f.Type
		if f.Min != nil {
			attr[lengthKey(f.Type, "min")] = *f.Min
		}
		if f.Max != nil {
			attr[lengthKey(f.Type, "max")] = *f.Max
		}
	case KindMedia:
		attr["type"] = "media"
		attr["multiple"] = f.Multiple
		attr["allowedTypes"] = f.AllowedTypes
	case KindRelation:
		attr["type"] = "relation"
		attr["relation"] = f.Relation
		attr["target"] = EntityUID(Singularize(f.Target))
		if f.MappedBy != "" {
			attr["mappedBy"] = f.MappedBy
		}
		if f.InversedBy != "" {
			attr["inversedBy"] = f.InversedBy
		}
	case KindComponent:
		attr["type"] = "component"
		attr["component"] = f.Component
		attr["repeatable"] = f.Repeatable
	case KindEnum:
		attr["type"] = "enumeration"
		attr["enum"] = f.Enum
	case KindUID:
		attr["type"] = "uid"
		attr["targetField"] = f.TargetField
	case KindRichText:
		attr["type"] = "blocks"
	case KindOpaque:
		attr["type"] = "json"
	}

	if f.Required {
		attr["required"] = true
	}

	return attr
}

// lengthKey picks the constraint key: character length for textual types,
// numeric bounds otherwise.
func lengthKey(attrType, bound string) string {
	switch attrType {
	case "string", "text", "email":
		return bound + "Length"
	}
	return bound
}
