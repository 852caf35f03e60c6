// Package resolve performs the second migration pass: patching deferred
// relationship writes into the owning entities once every endpoint exists.
package resolve

import (
	"context"

	"github.com/cmsport/cmsport/internal/convert"
	"github.com/cmsport/cmsport/internal/logger"
	"github.com/cmsport/cmsport/internal/state"
	"github.com/cmsport/cmsport/internal/target"
)

// readOnlyAttributes are server-managed fields stripped before writing the
// merged representation back.
var readOnlyAttributes = []string{
	"id", "documentId", "createdAt", "updatedAt", "publishedAt", "locale",
}

// Resolver consumes the pending relationship queue and patches each owning
// entity. Every resolution is independent; failures are isolated per
// relationship and never fatal.
type Resolver struct {
	store   target.Store
	catalog *convert.Catalog
	state   *state.State
	logger  *logger.Logger
}

// New creates a Resolver.
func New(store target.Store, catalog *convert.Catalog, st *state.State, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Resolver{store: store, catalog: catalog, state: st, logger: log}
}

// ResolveAll processes every pending relationship. Resolution is
// idempotent: re-applying never duplicates array members.
func (r *Resolver) ResolveAll(ctx context.Context, pending []state.PendingRelation) {
	r.state.AddRelationTotal(len(pending))

	for _, rel := range pending {
		if err := r.resolve(ctx, rel); err != nil {
			r.state.RelationFailed()
			r.state.RecordError("relations", rel.SourceID, err.Error())
			r.logger.Warnw("Relationship resolution failed",
				"type", rel.SourceType,
				"field", rel.FieldName,
				"source", rel.SourceID,
				"target", rel.TargetSourceID,
				"error", err,
			)
			continue
		}
		r.state.RelationCompleted()
	}
}

// skipError marks relationships whose endpoints never made it into the id
// mapping: the referenced entity failed to migrate or was out of scope.
type skipError struct {
	side string
	id   string
}

func (e *skipError) Error() string {
	return "no identity mapping for " + e.side + " " + e.id
}

// resolve patches one relationship into its owning entity.
func (r *Resolver) resolve(ctx context.Context, rel state.PendingRelation) error {
	owner, ok := r.state.Identity(rel.SourceID)
	if !ok {
		return &skipError{side: "owning entity", id: rel.SourceID}
	}
	targetIdentity, ok := r.state.Identity(rel.TargetSourceID)
	if !ok {
		return &skipError{side: "referenced entity", id: rel.TargetSourceID}
	}

	schema := r.catalog.Schema(rel.SourceType)
	if schema == nil {
		return &skipError{side: "schema for", id: rel.SourceType}
	}
	plural := schema.PluralName

	entry, err := r.store.Get(ctx, plural, owner.DocumentID)
	if err != nil {
		return err
	}

	data := stripReadOnly(entry.Attributes)
	mergeRelation(data, rel.FieldName, targetIdentity.ID, rel.IsArray)

	if _, err := r.store.Update(ctx, plural, owner.DocumentID, data); err != nil {
		return err
	}

	return nil
}

// mergeRelation merges the target id into the named field. Array relations
// append only when the id is not already present, which keeps re-runs from
// duplicating members.
func mergeRelation(data map[string]interface{}, field string, targetID int, isArray bool) {
	if !isArray {
		data[field] = targetID
		return
	}

	existing := relationIDs(data[field])
	for _, id := range existing {
		if id == targetID {
			data[field] = existing
			return
		}
	}
	data[field] = append(existing, targetID)
}

// relationIDs normalizes the current field value into a list of target ids.
// The store may return connected entries as objects carrying an id, as
// JSON-decoded numbers, or as the []int a previous merge wrote.
func relationIDs(value interface{}) []int {
	switch items := value.(type) {
	case []int:
		return append([]int(nil), items...)
	case []interface{}:
		var ids []int
		for _, item := range items {
			switch v := item.(type) {
			case float64:
				ids = append(ids, int(v))
			case int:
				ids = append(ids, v)
			case map[string]interface{}:
				if id, ok := v["id"].(float64); ok {
					ids = append(ids, int(id))
				}
			}
		}
		return ids
	}
	return nil
}

// stripReadOnly copies an entity representation without server-managed
// attributes.
func stripReadOnly(attributes map[string]interface{}) map[string]interface{} {
	data := make(map[string]interface{}, len(attributes))
	for k, v := range attributes {
		data[k] = v
	}
	for _, key := range readOnlyAttributes {
		delete(data, key)
	}
	return data
}
