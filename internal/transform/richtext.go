package transform

import (
	"regexp"
	"strconv"
)

// headingStyle matches heading-style markers: "h" followed by one digit.
var headingStyle = regexp.MustCompile(`^h([1-6])$`)

// decorationFlags maps portable-text decoration marks to the boolean flags
// of a structured text node.
var decorationFlags = map[string]string{
	"strong":         "bold",
	"em":             "italic",
	"underline":      "underline",
	"strike-through": "strikethrough",
	"code":           "code",
}

// ConvertBlocks converts a sequence of portable rich-text blocks into the
// target's structured block sequence. Unrecognized items are skipped.
func ConvertBlocks(value interface{}) []map[string]interface{} {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}

	blocks := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		block, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if converted := convertBlock(block); converted != nil {
			blocks = append(blocks, converted)
		}
	}
	return blocks
}

// convertBlock maps one portable block by its style marker: a heading style
// becomes a heading at that level, a quote style becomes a blockquote, and
// anything else becomes a paragraph.
func convertBlock(block map[string]interface{}) map[string]interface{} {
	if t, _ := block["_type"].(string); t != "block" {
		return nil
	}

	children := convertSpans(block)

	style, _ := block["style"].(string)
	if m := headingStyle.FindStringSubmatch(style); m != nil {
		level, _ := strconv.Atoi(m[1])
		return map[string]interface{}{
			"type":     "heading",
			"level":    level,
			"children": children,
		}
	}
	if style == "blockquote" {
		return map[string]interface{}{
			"type":     "quote",
			"children": children,
		}
	}
	return map[string]interface{}{
		"type":     "paragraph",
		"children": children,
	}
}

// convertSpans converts a block's inline spans. A span whose mark resolves
// to a link definition becomes a link node wrapping a single plain text
// child; any other decoration marks on that span are discarded (link takes
// exclusive precedence over decoration on the same span).
func convertSpans(block map[string]interface{}) []map[string]interface{} {
	defs := linkDefs(block)

	spans, _ := block["children"].([]interface{})
	nodes := make([]map[string]interface{}, 0, len(spans))

	for _, item := range spans {
		span, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		text, _ := span["text"].(string)
		marks, _ := span["marks"].([]interface{})

		if node := linkNode(marks, defs, text); node != nil {
			nodes = append(nodes, node)
			continue
		}

		node := map[string]interface{}{
			"type": "text",
			"text": text,
		}
		for _, m := range marks {
			mark, _ := m.(string)
			if flag, ok := decorationFlags[mark]; ok {
				node[flag] = true
			}
		}
		nodes = append(nodes, node)
	}

	if len(nodes) == 0 {
		// The target format requires at least one child node.
		nodes = append(nodes, map[string]interface{}{"type": "text", "text": ""})
	}
	return nodes
}

// linkDefs indexes the block's mark definitions that describe links.
func linkDefs(block map[string]interface{}) map[string]string {
	defs := make(map[string]string)
	markDefs, _ := block["markDefs"].([]interface{})
	for _, item := range markDefs {
		def, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if t, _ := def["_type"].(string); t != "link" {
			continue
		}
		key, _ := def["_key"].(string)
		href, _ := def["href"].(string)
		if key != "" {
			defs[key] = href
		}
	}
	return defs
}

// linkNode returns a link node if any of the span's marks resolves to a
// link definition, nil otherwise.
func linkNode(marks []interface{}, defs map[string]string, text string) map[string]interface{} {
	for _, m := range marks {
		mark, _ := m.(string)
		href, ok := defs[mark]
		if !ok {
			continue
		}
		return map[string]interface{}{
			"type": "link",
			"url":  href,
			"children": []map[string]interface{}{
				{"type": "text", "text": text},
			},
		}
	}
	return nil
}
