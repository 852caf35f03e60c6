// Package report builds and emits the run reports: a generation report
// after schema conversion and a migration report after content migration.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cmsport/cmsport/internal/convert"
	"github.com/cmsport/cmsport/internal/migrate"
	"github.com/cmsport/cmsport/internal/state"
)

// TypeSummary describes one generated entity schema.
type TypeSummary struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	PluralName string `json:"pluralName"`
	Attributes int    `json:"attributes"`
}

// RelationshipSummary describes one classified entity-pair relationship.
type RelationshipSummary struct {
	SchemaA     string `json:"schemaA"`
	SchemaB     string `json:"schemaB"`
	Cardinality string `json:"cardinality"`
}

// GenerationReport summarizes one schema conversion run.
type GenerationReport struct {
	GeneratedAt   time.Time             `json:"generatedAt"`
	Schemas       int                   `json:"schemas"`
	Components    int                   `json:"components"`
	Singletons    []string              `json:"singletons"`
	Types         []TypeSummary         `json:"types"`
	Relationships []RelationshipSummary `json:"relationships"`
}

// NewGenerationReport builds the report from a converted catalog.
func NewGenerationReport(catalog *convert.Catalog) *GenerationReport {
	r := &GenerationReport{
		GeneratedAt: time.Now(),
		Schemas:     len(catalog.Schemas),
		Components:  len(catalog.Components),
	}

	for _, typeName := range catalog.TypeOrder {
		ts := catalog.Schemas[typeName]
		r.Types = append(r.Types, TypeSummary{
			Name:       typeName,
			Kind:       ts.Kind,
			PluralName: ts.PluralName,
			Attributes: ts.Attributes.Len(),
		})
		if ts.Kind == "singleType" {
			r.Singletons = append(r.Singletons, typeName)
		}
	}

	if catalog.Relations != nil {
		keys := make([]string, 0, len(catalog.Relations.Records))
		for key := range catalog.Relations.Records {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			rec := catalog.Relations.Records[key]
			r.Relationships = append(r.Relationships, RelationshipSummary{
				SchemaA:     rec.SchemaA,
				SchemaB:     rec.SchemaB,
				Cardinality: rec.Cardinality,
			})
		}
	}

	return r
}

// MigrationReport summarizes one content migration run.
type MigrationReport struct {
	StartedAt   time.Time                 `json:"startedAt"`
	CompletedAt time.Time                 `json:"completedAt"`
	Duration    string                    `json:"duration"`
	Success     bool                      `json:"success"`
	Order       []string                  `json:"order"`
	Assets      state.Counters            `json:"assets"`
	Entities    state.Counters            `json:"entities"`
	Relations   state.Counters            `json:"relations"`
	Identities  map[string]state.Identity `json:"identities"`
	AssetMap    map[string]int            `json:"assetMap"`
	Errors      []state.ErrorEntry        `json:"errors"`
}

// NewMigrationReport builds the report from an orchestrator result.
func NewMigrationReport(res *migrate.Result) *MigrationReport {
	return &MigrationReport{
		StartedAt:   res.StartedAt,
		CompletedAt: res.CompletedAt,
		Duration:    res.Duration.Round(time.Millisecond).String(),
		Success:     res.Success,
		Order:       res.Order,
		Assets:      res.Assets,
		Entities:    res.Entities,
		Relations:   res.Relations,
		Identities:  res.Identities,
		AssetMap:    res.AssetMap,
		Errors:      res.Errors,
	}
}

// WriteJSON writes a report under dir with a timestamped filename and
// returns the written path.
func WriteJSON(dir, prefix string, report interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", prefix, time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
