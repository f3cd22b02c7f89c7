package xlpatch

import (
	"strconv"

	"github.com/beevik/etree"
)

// Worksheet markup is mutated through a generic element tree so that sibling
// nodes, attribute order, and namespace declarations survive the round trip
// untouched. Elements are matched by local tag name: worksheet parts in the
// wild use either the default spreadsheetml namespace or a prefix, and both
// forms must patch identically.

// childElements returns the direct children of parent whose local tag name is
// tag, in document order.
func childElements(parent *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, el := range parent.ChildElements() {
		if el.Tag == tag {
			out = append(out, el)
		}
	}
	return out
}

// newChildElem creates a detached element carrying the parent's namespace
// prefix, so inserted nodes serialize with the same prefix as their siblings.
func newChildElem(parent *etree.Element, tag string) *etree.Element {
	el := etree.NewElement(tag)
	el.Space = parent.Space
	return el
}

// findSheetData returns the sheetData child of the worksheet root, or nil.
func findSheetData(root *etree.Element) *etree.Element {
	for _, el := range root.ChildElements() {
		if el.Tag == "sheetData" {
			return el
		}
	}
	return nil
}

// findRow returns the row element whose r attribute equals rowNum, or nil.
func findRow(sheetData *etree.Element, rowNum int) *etree.Element {
	want := strconv.Itoa(rowNum)
	for _, row := range childElements(sheetData, "row") {
		if row.SelectAttrValue("r", "") == want {
			return row
		}
	}
	return nil
}

// insertRowSorted creates a row element numbered rowNum and inserts it
// immediately before the first row with a greater number, keeping rows in
// ascending order. Rows with an unparsable r attribute compare as 0 so an
// already-malformed sheet still accepts the insertion.
func insertRowSorted(sheetData *etree.Element, rowNum int) *etree.Element {
	newRow := newChildElem(sheetData, "row")
	newRow.CreateAttr("r", strconv.Itoa(rowNum))
	for _, row := range childElements(sheetData, "row") {
		existing, err := strconv.Atoi(row.SelectAttrValue("r", "0"))
		if err != nil {
			existing = 0
		}
		if existing > rowNum {
			sheetData.InsertChildAt(row.Index(), newRow)
			return newRow
		}
	}
	sheetData.AddChild(newRow)
	return newRow
}

// findCell returns the cell element whose r attribute equals address exactly,
// or nil.
func findCell(row *etree.Element, address string) *etree.Element {
	for _, cell := range childElements(row, "c") {
		if cell.SelectAttrValue("r", "") == address {
			return cell
		}
	}
	return nil
}

// insertCellSorted creates a cell element tagged with address and inserts it
// immediately before the first cell with a greater column index, keeping
// cells in ascending column order. Cells with malformed refs compare as
// column 0 and never displace the insertion point.
func insertCellSorted(row *etree.Element, address string) *etree.Element {
	colIdx := columnIndexOf(address)
	newCell := newChildElem(row, "c")
	newCell.CreateAttr("r", address)
	for _, cell := range childElements(row, "c") {
		if columnIndexOf(cell.SelectAttrValue("r", "")) > colIdx {
			row.InsertChildAt(cell.Index(), newCell)
			return newCell
		}
	}
	row.AddChild(newCell)
	return newCell
}
