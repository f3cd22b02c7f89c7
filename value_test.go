package xlpatch

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellFromXML(t *testing.T, cellXML string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(cellXML))
	return doc.Root()
}

func TestCellValue_InlineString(t *testing.T) {
	cell := cellFromXML(t, `<c r="A1" t="inlineStr"><is><t>hello</t></is></c>`)
	assert.Equal(t, "hello", cellValue(cell, nil))
}

func TestCellValue_InlineRichText(t *testing.T) {
	// Rich-text runs concatenate in document order.
	cell := cellFromXML(t, `<c r="A1" t="inlineStr"><is><r><t>foo</t></r><r><t> bar</t></r></is></c>`)
	assert.Equal(t, "foo bar", cellValue(cell, nil))
}

func TestCellValue_SharedString(t *testing.T) {
	shared := SharedStrings{"zero", "one", "two"}
	cell := cellFromXML(t, `<c r="A1" t="s"><v>1</v></c>`)
	assert.Equal(t, "one", cellValue(cell, shared))
}

func TestCellValue_SharedStringOutOfRange(t *testing.T) {
	shared := SharedStrings{"zero"}
	cell := cellFromXML(t, `<c r="A1" t="s"><v>7</v></c>`)
	assert.Equal(t, "7", cellValue(cell, shared))
}

func TestCellValue_SharedStringUnparsableIndex(t *testing.T) {
	shared := SharedStrings{"zero"}
	cell := cellFromXML(t, `<c r="A1" t="s"><v>abc</v></c>`)
	assert.Equal(t, "abc", cellValue(cell, shared))
}

func TestCellValue_Numeric(t *testing.T) {
	cell := cellFromXML(t, `<c r="A1"><v>3.14</v></c>`)
	assert.Equal(t, "3.14", cellValue(cell, nil))
}

func TestCellValue_Boolean(t *testing.T) {
	cell := cellFromXML(t, `<c r="A1" t="b"><v>1</v></c>`)
	assert.Equal(t, "1", cellValue(cell, nil))
}

func TestCellValue_FormulaCached(t *testing.T) {
	// The cached value is returned raw; the formula itself is ignored.
	cell := cellFromXML(t, `<c r="A1" t="str"><f>CONCAT(B1,C1)</f><v>cached</v></c>`)
	assert.Equal(t, "cached", cellValue(cell, nil))
}

func TestCellValue_Empty(t *testing.T) {
	cell := cellFromXML(t, `<c r="A1"/>`)
	assert.Equal(t, "", cellValue(cell, nil))
}

func TestSharedStringsResolve(t *testing.T) {
	shared := SharedStrings{"a", "b"}
	assert.Equal(t, "a", shared.Resolve("0"))
	assert.Equal(t, "b", shared.Resolve("1"))
	assert.Equal(t, "2", shared.Resolve("2"))
	assert.Equal(t, "-1", shared.Resolve("-1"))
	assert.Equal(t, "x", shared.Resolve("x"))
}

func TestParseSharedStrings(t *testing.T) {
	table, err := parseSharedStrings([]byte(`<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
  <si><t>plain</t></si>
  <si><r><t>rich</t></r><r><t xml:space="preserve"> text</t></r></si>
  <si><t></t></si>
</sst>`))
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, "plain", table[0])
	assert.Equal(t, "rich text", table[1])
	assert.Equal(t, "", table[2])
}
