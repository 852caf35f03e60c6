package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmsport/cmsport/internal/logger"
)

// singletonDir is the category folder that marks its types as singletons.
const singletonDir = "singletons"

// singletonMarker is the filename marker used by flat layouts.
const singletonMarker = ".singleton."

// Recovery extracts entity type declarations from a schema source tree.
// It is tolerant: an unparsable file or field is skipped with a warning and
// never aborts the run.
type Recovery struct {
	logger *logger.Logger
}

// NewRecovery creates a Recovery. A nil logger falls back to the default.
func NewRecovery(log *logger.Logger) *Recovery {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Recovery{logger: log}
}

// Recover walks the schema source tree and returns every type declaration
// it can parse. Both category-folder layouts (documents/, objects/,
// singletons/) and flat layouts (filename markers) are supported.
// The only error condition is an unreadable root.
func (r *Recovery) Recover(root string) ([]TypeDecl, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("schema directory not accessible: %w", err)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".js" || ext == ".ts" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk schema directory: %w", err)
	}

	var decls []TypeDecl
	seen := make(map[string]bool)

	for _, path := range files {
		decl, err := r.parseFile(path)
		if err != nil {
			r.logger.Warnw("Skipping unparsable schema file", "file", path, "error", err)
			continue
		}
		if decl == nil {
			// Not a type declaration (index files, helpers)
			continue
		}
		if seen[decl.Name] {
			r.logger.Warnw("Duplicate type name, keeping first declaration",
				"type", decl.Name, "file", path)
			continue
		}
		seen[decl.Name] = true
		decls = append(decls, *decl)
	}

	r.logger.Infow("Schema recovery complete",
		"files", len(files),
		"types", len(decls),
		"singletons", countSingletons(decls),
	)

	return decls, nil
}

// parseFile parses a single schema source file into a type declaration.
// Returns (nil, nil) for files that contain no type declaration at all.
func (r *Recovery) parseFile(path string) (*TypeDecl, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	src := stripImports(string(content))
	start := strings.IndexByte(src, '{')
	if start < 0 {
		return nil, nil
	}
	end, ok := matchBalanced(src, start, '{', '}')
	if !ok {
		return nil, fmt.Errorf("unbalanced type declaration")
	}
	block := src[start : end+1]

	name := extractString(block, "name")
	if name == "" {
		return nil, nil
	}

	kind := KindObject
	if extractString(block, "type") == string(KindDocument) {
		kind = KindDocument
	}

	warn := func(format string, args ...interface{}) {
		r.logger.Warnw(fmt.Sprintf(format, args...), "file", path)
	}

	decl := &TypeDecl{
		Name:      name,
		Kind:      kind,
		Title:     extractString(block, "title"),
		Singleton: isSingleton(path),
	}

	fieldsBody, found, ok := extractBlock(block, "fields", '[', ']')
	if !ok {
		return nil, fmt.Errorf("unbalanced fields block")
	}
	if found {
		decl.Fields = parseFieldBlocks(fieldsBody, 0, warn)
	}

	return decl, nil
}

// stripImports drops import lines so that named-import braces, as in
// "import {defineField} from 'sanity'", never get mistaken for the start of
// the declaration object.
func stripImports(src string) string {
	lines := strings.Split(src, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "import ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// isSingleton applies the layout markers: a singletons category folder or a
// .singleton. filename marker in flat layouts.
func isSingleton(path string) bool {
	if filepath.Base(filepath.Dir(path)) == singletonDir {
		return true
	}
	return strings.Contains(filepath.Base(path), singletonMarker)
}

func countSingletons(decls []TypeDecl) int {
	n := 0
	for _, d := range decls {
		if d.Singleton {
			n++
		}
	}
	return n
}
