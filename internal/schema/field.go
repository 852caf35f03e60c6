package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxNestingDepth bounds the bracket matcher. Declarations nested deeper
// than this are treated as unparsable and degrade to opaque fields.
const maxNestingDepth = 32

// maxFieldDepth bounds recursive parsing of nested object fields.
const maxFieldDepth = 8

var (
	keyPattern = `(?:^|[\s,{(])%s\s*:\s*`

	namePattern  = regexp.MustCompile(fmt.Sprintf(keyPattern, "name") + "['\"`]([^'\"`]*)['\"`]")
	typePattern  = regexp.MustCompile(fmt.Sprintf(keyPattern, "type") + "['\"`]([^'\"`]*)['\"`]")
	titlePattern = regexp.MustCompile(fmt.Sprintf(keyPattern, "title") + "['\"`]([^'\"`]*)['\"`]")

	minPattern = regexp.MustCompile(`\.min\(\s*([0-9]+(?:\.[0-9]+)?)\s*\)`)
	maxPattern = regexp.MustCompile(`\.max\(\s*([0-9]+(?:\.[0-9]+)?)\s*\)`)
)

// extractString pulls the first `key: 'value'` string assignment out of a block.
func extractString(block, key string) string {
	var re *regexp.Regexp
	switch key {
	case "name":
		re = namePattern
	case "type":
		re = typePattern
	case "title":
		re = titlePattern
	default:
		re = regexp.MustCompile(fmt.Sprintf(keyPattern, regexp.QuoteMeta(key)) + "['\"`]([^'\"`]*)['\"`]")
	}
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return m[1]
}

// isQuote reports whether c opens a string literal in the source dialect.
func isQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`'
}

// skipString returns the index just past the string literal opening at i.
func skipString(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		}
		i++
	}
	return len(s)
}

// matchBalanced finds the index of the close bracket matching s[start],
// skipping string literals. Returns false when brackets are unbalanced or
// nested beyond maxNestingDepth.
func matchBalanced(s string, start int, open, close byte) (int, bool) {
	if start >= len(s) || s[start] != open {
		return 0, false
	}
	depth := 0
	for i := start; i < len(s); {
		c := s[i]
		switch {
		case isQuote(c):
			i = skipString(s, i)
			continue
		case c == open:
			depth++
			if depth > maxNestingDepth {
				return 0, false
			}
		case c == close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// extractBlock locates `key: <open>...<close>` inside a block and returns the
// bracketed body without the outer brackets. The second return is false when
// the key is absent, the third is false when the body is malformed.
func extractBlock(block, key string, open, close byte) (string, bool, bool) {
	re := regexp.MustCompile(fmt.Sprintf(keyPattern, regexp.QuoteMeta(key)))
	loc := re.FindStringIndex(block)
	if loc == nil {
		return "", false, true
	}
	i := loc[1]
	for i < len(block) && (block[i] == ' ' || block[i] == '\t' || block[i] == '\n' || block[i] == '\r') {
		i++
	}
	if i >= len(block) || block[i] != open {
		return "", false, true
	}
	end, ok := matchBalanced(block, i, open, close)
	if !ok {
		return "", true, false
	}
	return block[i+1 : end], true, true
}

// topLevelObjects splits an array body into its top-level `{...}` chunks.
// Non-object items (bare strings, spreads) are skipped.
func topLevelObjects(body string) []string {
	var objects []string
	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case isQuote(c):
			i = skipString(body, i)
		case c == '{':
			end, ok := matchBalanced(body, i, '{', '}')
			if !ok {
				return objects
			}
			objects = append(objects, body[i:end+1])
			i = end + 1
		default:
			i++
		}
	}
	return objects
}

// valueSpan returns the raw source text of the value assigned to key within
// a field block, ending at the next top-level comma. Used for validation
// expressions, which are functions rather than literals.
func valueSpan(block, key string) string {
	re := regexp.MustCompile(fmt.Sprintf(keyPattern, regexp.QuoteMeta(key)))
	loc := re.FindStringIndex(block)
	if loc == nil {
		return ""
	}
	start := loc[1]
	depth := 0
	for i := start; i < len(block); {
		c := block[i]
		switch {
		case isQuote(c):
			i = skipString(block, i)
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth == 0 {
				return block[start:i]
			}
			depth--
		case c == ',' && depth == 0:
			return block[start:i]
		}
		i++
	}
	return block[start:]
}

// parseValidation detects required/min/max constraints via substring matching
// on the validation expression.
func parseValidation(block string) Validation {
	expr := valueSpan(block, "validation")
	if expr == "" {
		return Validation{}
	}
	v := Validation{
		Required: strings.Contains(expr, "required()"),
	}
	if m := minPattern.FindStringSubmatch(expr); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.Min = &f
		}
	}
	if m := maxPattern.FindStringSubmatch(expr); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			v.Max = &f
		}
	}
	return v
}

// parseOptions extracts the options block: a slug source or an enum list.
func parseOptions(block string) Options {
	body, found, ok := extractBlock(block, "options", '{', '}')
	if !found || !ok {
		return Options{}
	}
	opts := Options{Source: extractString(body, "source")}
	listBody, found, ok := extractBlock(body, "list", '[', ']')
	if !found || !ok {
		return opts
	}
	for _, item := range topLevelObjects(listBody) {
		opt := EnumOption{
			Title: extractString(item, "title"),
			Value: extractString(item, "value"),
		}
		if opt.Value == "" {
			opt.Value = opt.Title
		}
		if opt.Value != "" {
			opts.List = append(opts.List, opt)
		}
	}
	return opts
}

// parseReferenceTargets extracts the target type names from a `to: [...]` block.
func parseReferenceTargets(block string) ([]string, bool) {
	body, found, ok := extractBlock(block, "to", '[', ']')
	if !found {
		return nil, true
	}
	if !ok {
		return nil, false
	}
	var targets []string
	for _, item := range topLevelObjects(body) {
		if t := extractString(item, "type"); t != "" {
			targets = append(targets, t)
		}
	}
	return targets, true
}

// parseItems extracts the item-type descriptors from an `of: [...]` block.
// Inline object items keep their nested field declarations.
func parseItems(block string, depth int, warn func(format string, args ...interface{})) ([]ItemDecl, bool) {
	body, found, ok := extractBlock(block, "of", '[', ']')
	if !found {
		return nil, true
	}
	if !ok {
		return nil, false
	}
	var items []ItemDecl
	for _, chunk := range topLevelObjects(body) {
		item := ItemDecl{Type: extractString(chunk, "type")}
		if item.Type == "" {
			continue
		}
		if item.Type == "reference" {
			targets, ok := parseReferenceTargets(chunk)
			if !ok {
				continue
			}
			item.To = targets
		}
		if depth < maxFieldDepth {
			nested, found, ok := extractBlock(chunk, "fields", '[', ']')
			if !ok {
				continue
			}
			if found {
				item.Fields = parseFieldBlocks(nested, depth+1, warn)
			}
		}
		items = append(items, item)
	}
	return items, true
}

// parseField parses a single field-definition block. A field without a name
// is an error (the caller skips it with a warning); structural damage inside
// an otherwise-named field degrades to an opaque declaration instead.
func parseField(block string, depth int, warn func(format string, args ...interface{})) (FieldDecl, error) {
	name := extractString(block, "name")
	if name == "" {
		return FieldDecl{}, fmt.Errorf("field block has no name")
	}

	field := FieldDecl{
		Name:       name,
		Type:       extractString(block, "type"),
		Title:      extractString(block, "title"),
		Validation: parseValidation(block),
		Options:    parseOptions(block),
	}

	targets, ok := parseReferenceTargets(block)
	if !ok {
		field.Opaque = true
		return field, nil
	}
	field.To = targets

	items, ok := parseItems(block, depth, warn)
	if !ok {
		field.Opaque = true
		return field, nil
	}
	field.Of = items

	if depth < maxFieldDepth {
		nested, found, ok := extractBlock(block, "fields", '[', ']')
		if !ok {
			field.Opaque = true
			return field, nil
		}
		if found {
			field.Fields = parseFieldBlocks(nested, depth+1, warn)
		}
	}

	return field, nil
}

// parseFieldBlocks parses every field-definition block in an array body.
// Unparsable blocks are skipped with a warning; parsing never fails as a whole.
func parseFieldBlocks(body string, depth int, warn func(format string, args ...interface{})) []FieldDecl {
	var fields []FieldDecl
	for _, block := range topLevelObjects(body) {
		field, err := parseField(block, depth, warn)
		if err != nil {
			warn("skipping unparsable field block: %v", err)
			continue
		}
		fields = append(fields, field)
	}
	return fields
}
