package xlpatch

import (
	"github.com/beevik/etree"
)

// cellKind classifies a cell by its t attribute for value extraction. Any
// type not handled specially (numbers, booleans, errors, formula caches, date
// strings) reads as its raw stored value.
type cellKind int

const (
	kindRaw cellKind = iota
	kindInline
	kindShared
)

func kindOf(cell *etree.Element) cellKind {
	switch cell.SelectAttrValue("t", "") {
	case "inlineStr":
		return kindInline
	case "s":
		return kindShared
	default:
		return kindRaw
	}
}

// cellValue returns the cell's current textual value, resolving shared-string
// references through the table. Cells without a value read as "".
func cellValue(cell *etree.Element, shared SharedStrings) string {
	switch kindOf(cell) {
	case kindInline:
		return textContent(cell)
	case kindShared:
		return shared.Resolve(rawValue(cell))
	default:
		return rawValue(cell)
	}
}

// rawValue returns the text of the cell's v child, or "" when absent.
func rawValue(cell *etree.Element) string {
	for _, el := range cell.ChildElements() {
		if el.Tag == "v" {
			return el.Text()
		}
	}
	return ""
}

// textContent concatenates the text of every t element beneath el in document
// order. This flattens inline strings and rich-text runs alike.
func textContent(el *etree.Element) string {
	var out string
	for _, child := range el.ChildElements() {
		if child.Tag == "t" {
			out += child.Text()
			continue
		}
		out += textContent(child)
	}
	return out
}
