// Package source reads the export to migrate from: the NDJSON content dump
// and the asset index.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cmsport/cmsport/internal/logger"
)

// systemPrefixes mark infrastructure records in the export stream. Records
// whose discriminator carries one of these prefixes are not content and are
// excluded entirely.
var systemPrefixes = []string{"system.", "sanity."}

// systemFieldPrefix marks per-document system fields excluded from
// transformation.
const systemFieldPrefix = "_"

// maxLineSize bounds a single NDJSON record. Rich-text heavy documents can
// get large.
const maxLineSize = 16 * 1024 * 1024

// Document is one record from the export stream.
type Document struct {
	ID     string
	Type   string
	Fields map[string]interface{} // full raw field map, system fields included
}

// ContentFields returns the document's fields with system fields stripped.
func (d *Document) ContentFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(d.Fields))
	for name, value := range d.Fields {
		if strings.HasPrefix(name, systemFieldPrefix) {
			continue
		}
		fields[name] = value
	}
	return fields
}

// CreatedAt returns the export's creation timestamp for the document, if present.
func (d *Document) CreatedAt() string {
	if v, ok := d.Fields["_createdAt"].(string); ok {
		return v
	}
	return ""
}

// IsSystemType reports whether a discriminator names an infrastructure record.
func IsSystemType(typeName string) bool {
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(typeName, prefix) {
			return true
		}
	}
	return false
}

// ReadDocuments reads a newline-delimited JSON export, one object per
// record. System records are excluded; malformed lines are skipped with a
// warning, never failing the read.
func ReadDocuments(path string, log *logger.Logger) ([]Document, error) {
	if log == nil {
		log = logger.NewDefault()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var docs []Document
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(line), &fields); err != nil {
			log.Warnw("Skipping malformed export line", "line", lineNum, "error", err)
			continue
		}

		typeName, _ := fields["_type"].(string)
		if typeName == "" {
			log.Warnw("Skipping record without discriminator", "line", lineNum)
			continue
		}
		if IsSystemType(typeName) {
			continue
		}

		id, _ := fields["_id"].(string)
		if id == "" {
			log.Warnw("Skipping record without id", "line", lineNum, "type", typeName)
			continue
		}

		docs = append(docs, Document{ID: id, Type: typeName, Fields: fields})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	log.Infow("Export read", "records", len(docs), "lines", lineNum)

	return docs, nil
}

// GroupByType partitions documents by their discriminator.
func GroupByType(docs []Document) map[string][]Document {
	grouped := make(map[string][]Document)
	for _, doc := range docs {
		grouped[doc.Type] = append(grouped[doc.Type], doc)
	}
	return grouped
}
