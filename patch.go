package xlpatch

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// PatchSheet applies changes to one worksheet document and returns the
// patched markup, the number of changes applied, and the changes rejected.
//
// Each change is validated before anything is touched: the cell's current
// value, trimmed, must equal the trimmed beforeName or afterName, guarding
// against overwriting a cell whose content has drifted from what the caller
// last saw. Rejections never mutate the document and never fail the batch;
// only a worksheet without a sheetData element is a hard error.
func PatchSheet(sheetXML []byte, shared SharedStrings, changes []Change) ([]byte, int, []Issue, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(sheetXML); err != nil {
		return nil, 0, nil, fmt.Errorf("parse worksheet: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, 0, nil, fmt.Errorf("parse worksheet: empty document")
	}
	sheetData := findSheetData(root)
	if sheetData == nil {
		return nil, 0, nil, fmt.Errorf("sheetData not found")
	}

	applied := 0
	var issues []Issue

	for _, c := range changes {
		address := strings.TrimSpace(c.SourceAddress)
		// Issues raised from here on report the trimmed address.
		c.SourceAddress = address

		ref, err := ParseCellRef(address)
		if err != nil {
			issues = append(issues, issueFor(c, err.Error()))
			continue
		}

		row := findRow(sheetData, ref.Row)
		var cell *etree.Element
		if row != nil {
			cell = findCell(row, address)
		}
		current := ""
		if cell != nil {
			current = cellValue(cell, shared)
		}

		trimmed := strings.TrimSpace(current)
		if trimmed != strings.TrimSpace(c.BeforeName) && trimmed != strings.TrimSpace(c.AfterName) {
			reason := fmt.Sprintf(`Cell value mismatch. expected="%s" actual="%s"`, c.BeforeName, current)
			issues = append(issues, issueFor(c, reason))
			continue
		}

		if row == nil {
			row = insertRowSorted(sheetData, ref.Row)
		}
		if cell == nil {
			cell = insertCellSorted(row, address)
		}
		writeInlineString(cell, c.AfterName)
		applied++
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, 0, nil, fmt.Errorf("serialize worksheet: %w", err)
	}
	return out, applied, issues, nil
}
