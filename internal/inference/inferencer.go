package inference

import (
	"github.com/cmsport/cmsport/internal/logger"
)

// Relation cardinality kinds, matching the target platform's relation vocabulary.
const (
	OneToOne   = "oneToOne"
	OneToMany  = "oneToMany"
	ManyToOne  = "manyToOne"
	ManyToMany = "manyToMany"
)

// Record is the classified relationship for one pair of entity types,
// built from at most two reference edges.
type Record struct {
	SchemaA string
	SchemaB string
	EdgeAB  *Edge // A's field referencing B, nil when absent
	EdgeBA  *Edge // B's field referencing A, nil when absent

	// Cardinality is the pair-level relation label: a mixed pair is always
	// "oneToMany" regardless of which side was discovered first.
	Cardinality string
}

// FieldRelation is the per-field view of a classified relationship, keyed
// by (entity type, field name) for consumption during schema conversion.
type FieldRelation struct {
	Kind       string
	Target     string
	MappedBy   string // set on the inverse side of a bidirectional relation
	InversedBy string // set on the owning side of a bidirectional relation
	IsArray    bool
}

// Result holds the inference output: one record per pair key and the
// per-field relation lookup used by the converter.
type Result struct {
	Records map[string]*Record                  // pair key -> record
	Fields  map[string]map[string]*FieldRelation // entity type -> field name -> relation
}

// Relation returns the classified relation for a field, or nil.
func (r *Result) Relation(entityType, fieldName string) *FieldRelation {
	fields, ok := r.Fields[entityType]
	if !ok {
		return nil
	}
	return fields[fieldName]
}

// Infer groups reference edges by pair key and classifies each pair's
// cardinality and ownership. The first edge seen for a key fixes which type
// is schemaA; this is deterministic for a given input order.
func Infer(edges []Edge, log *logger.Logger) *Result {
	if log == nil {
		log = logger.NewDefault()
	}

	records := make(map[string]*Record)
	var order []string

	for i := range edges {
		edge := &edges[i]
		key := PairKey(edge.SourceType, edge.TargetType)

		rec, exists := records[key]
		if !exists {
			rec = &Record{SchemaA: edge.SourceType, SchemaB: edge.TargetType}
			records[key] = rec
			order = append(order, key)
		}

		switch edge.SourceType {
		case rec.SchemaA:
			if rec.EdgeAB == nil {
				rec.EdgeAB = edge
			}
		case rec.SchemaB:
			if rec.EdgeBA == nil {
				rec.EdgeBA = edge
			}
		}
	}

	result := &Result{
		Records: records,
		Fields:  make(map[string]map[string]*FieldRelation),
	}

	for _, key := range order {
		rec := records[key]
		classify(rec, result)
		log.Debugw("Classified relationship",
			"pair", key,
			"bidirectional", rec.EdgeAB != nil && rec.EdgeBA != nil,
		)
	}

	return result
}

// classify applies the cardinality table to one record and registers the
// per-field relations. isArray on both ends is the sole many-to-many signal.
func classify(rec *Record, result *Result) {
	ab, ba := rec.EdgeAB, rec.EdgeBA

	switch {
	case ab != nil && ba != nil && ab.IsArray && ba.IsArray:
		// Both sides own one end; mappedBy/inversedBy cross-link.
		rec.Cardinality = ManyToMany
		put(result, ab, &FieldRelation{
			Kind: ManyToMany, Target: ab.TargetType, InversedBy: ba.FieldName, IsArray: true,
		})
		put(result, ba, &FieldRelation{
			Kind: ManyToMany, Target: ba.TargetType, MappedBy: ab.FieldName, IsArray: true,
		})

	case ab != nil && ba != nil && ab.IsArray && !ba.IsArray:
		// B is the "one" side: its single reference inverts A's array.
		rec.Cardinality = OneToMany
		put(result, ab, &FieldRelation{
			Kind: OneToMany, Target: ab.TargetType, MappedBy: ba.FieldName, IsArray: true,
		})
		put(result, ba, &FieldRelation{
			Kind: ManyToOne, Target: ba.TargetType, InversedBy: ab.FieldName,
		})

	case ab != nil && ba != nil && !ab.IsArray && ba.IsArray:
		// A is the "one" side, symmetric to the previous case. The pair label
		// stays oneToMany either way; only the per-field relations flip.
		rec.Cardinality = OneToMany
		put(result, ba, &FieldRelation{
			Kind: OneToMany, Target: ba.TargetType, MappedBy: ab.FieldName, IsArray: true,
		})
		put(result, ab, &FieldRelation{
			Kind: ManyToOne, Target: ab.TargetType, InversedBy: ba.FieldName,
		})

	case ab != nil && ba != nil:
		// Bidirectional one-to-one.
		rec.Cardinality = OneToOne
		put(result, ab, &FieldRelation{
			Kind: OneToOne, Target: ab.TargetType, InversedBy: ba.FieldName,
		})
		put(result, ba, &FieldRelation{
			Kind: OneToOne, Target: ba.TargetType, MappedBy: ab.FieldName,
		})

	case ab != nil:
		rel := unidirectional(ab)
		rec.Cardinality = rel.Kind
		put(result, ab, rel)

	case ba != nil:
		rel := unidirectional(ba)
		rec.Cardinality = rel.Kind
		put(result, ba, rel)
	}
}

// unidirectional builds the relation for an edge with no inverse field.
func unidirectional(edge *Edge) *FieldRelation {
	kind := OneToOne
	if edge.IsArray {
		kind = OneToMany
	}
	return &FieldRelation{Kind: kind, Target: edge.TargetType, IsArray: edge.IsArray}
}

func put(result *Result, edge *Edge, rel *FieldRelation) {
	fields, ok := result.Fields[edge.SourceType]
	if !ok {
		fields = make(map[string]*FieldRelation)
		result.Fields[edge.SourceType] = fields
	}
	fields[edge.FieldName] = rel
}
