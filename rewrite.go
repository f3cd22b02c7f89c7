package xlpatch

import (
	"strings"

	"github.com/beevik/etree"
)

// writeInlineString replaces the cell's children and type with a single
// inline string holding value. Leading or trailing spaces get an
// xml:space="preserve" marker so serializers keep them intact. This is the
// only mutation the engine performs; it never touches the shared-string table
// and never restores a numeric or shared type.
func writeInlineString(cell *etree.Element, value string) {
	for len(cell.Child) > 0 {
		cell.RemoveChildAt(0)
	}
	cell.CreateAttr("t", "inlineStr")

	inline := newChildElem(cell, "is")
	cell.AddChild(inline)

	text := newChildElem(inline, "t")
	if strings.HasPrefix(value, " ") || strings.HasSuffix(value, " ") {
		text.CreateAttr("xml:space", "preserve")
	}
	text.SetText(value)
	inline.AddChild(text)
}
