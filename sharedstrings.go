package xlpatch

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// SharedStrings is the workbook's shared-string table, indexed by position.
// It is a read-only input: the engine resolves existing cell values through
// it but never appends to it.
type SharedStrings []string

// Resolve interprets raw as a shared-string index and returns the entry it
// names. Unparsable or out-of-range indices fall back to the raw value, the
// same way an unrecognized cell type reads as its stored text.
func (s SharedStrings) Resolve(raw string) string {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(s) {
		return raw
	}
	return s[idx]
}

// parseSharedStrings reads an sst document into a table. Each si entry
// flattens to the concatenation of its text nodes, covering plain strings
// and rich-text runs.
func parseSharedStrings(data []byte) (SharedStrings, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse sharedStrings: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse sharedStrings: empty document")
	}
	var table SharedStrings
	for _, si := range childElements(root, "si") {
		table = append(table, textContent(si))
	}
	return table, nil
}
