package xlpatch

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRef is a parsed cell address: a column letter group and a 1-based row
// number, e.g. "AB12" → {Column: "AB", Row: 12}.
type CellRef struct {
	Column string // uppercase column letters
	Row    int
}

// String formats the reference as a cell address, e.g. "AB12".
func (r CellRef) String() string {
	return r.Column + strconv.Itoa(r.Row)
}

// ColumnIndex returns the 1-based column index for the reference
// ("A" → 1, "Z" → 26, "AA" → 27).
func (r CellRef) ColumnIndex() int {
	return columnIndex(r.Column)
}

// ParseCellRef parses a cell address like "B2" or "aa12". Column letters are
// case-insensitive and normalized to uppercase. The address must be one or
// more letters followed by one or more digits, with nothing else.
func ParseCellRef(address string) (CellRef, error) {
	i := 0
	for i < len(address) && isAlpha(address[i]) {
		i++
	}
	if i == 0 || i == len(address) {
		return CellRef{}, fmt.Errorf("Invalid cell address: %s", address)
	}
	// The row suffix must be digits only; Atoi alone would let a sign through.
	for j := i; j < len(address); j++ {
		if address[j] < '0' || address[j] > '9' {
			return CellRef{}, fmt.Errorf("Invalid cell address: %s", address)
		}
	}
	row, err := strconv.Atoi(address[i:])
	if err != nil {
		return CellRef{}, fmt.Errorf("Invalid cell address: %s", address)
	}
	return CellRef{Column: strings.ToUpper(address[:i]), Row: row}, nil
}

// columnIndex converts a column letter group to its 1-based index, treating
// the letters as a base-26 numeral with A=1..Z=26.
func columnIndex(letters string) int {
	index := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		index = index*26 + int(c-'A'+1)
	}
	return index
}

// columnIndexOf returns the 1-based column index of a full cell address, or 0
// when the address is malformed. Used to order cells within a row; a
// malformed ref sorts first rather than failing the insertion.
func columnIndexOf(address string) int {
	ref, err := ParseCellRef(address)
	if err != nil {
		return 0
	}
	return ref.ColumnIndex()
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
