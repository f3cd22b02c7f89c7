package xlpatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Change is one requested cell overwrite. BeforeName is the value the caller
// expects the cell to hold; the change is rejected when the cell currently
// holds neither BeforeName nor AfterName.
type Change struct {
	SheetName     string
	SourceAddress string
	BeforeName    string
	AfterName     string
	TableIndex    int
	ColumnIndex   *int
	Target        string // "table" or "column"
}

// Issue is a structured rejection record for one change that could not be
// safely applied. Reason is the user-facing explanation.
type Issue struct {
	SheetName     string `json:"sheetName"`
	SourceAddress string `json:"sourceAddress"`
	Reason        string `json:"reason"`
	TableIndex    int    `json:"tableIndex"`
	ColumnIndex   *int   `json:"columnIndex"`
	Target        string `json:"target"`
}

// Result reports one patch invocation: how many changes were applied and, in
// input order grouped by worksheet, the changes that were rejected.
type Result struct {
	AppliedCount int     `json:"appliedCount"`
	Issues       []Issue `json:"issues"`
}

// WriteJSON serializes the result to w without escaping HTML characters, so
// reasons containing quotes or non-ASCII text pass through readably. indent
// is applied when non-empty.
func (r *Result) WriteJSON(w io.Writer, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(r)
}

// issueFor builds an Issue for a rejected change, carrying the request's
// identifying fields through unchanged.
func issueFor(c Change, reason string) Issue {
	return Issue{
		SheetName:     c.SheetName,
		SourceAddress: c.SourceAddress,
		Reason:        reason,
		TableIndex:    c.TableIndex,
		ColumnIndex:   c.ColumnIndex,
		Target:        c.Target,
	}
}

// rawChange mirrors the payload wire shape: tableIndex and columnIndex may be
// absent, and target may hold anything.
type rawChange struct {
	SheetName     string `json:"sheetName"`
	SourceAddress string `json:"sourceAddress"`
	BeforeName    string `json:"beforeName"`
	AfterName     string `json:"afterName"`
	TableIndex    *int   `json:"tableIndex"`
	ColumnIndex   *int   `json:"columnIndex"`
	Target        string `json:"target"`
}

// DecodeChanges reads a payload document {"changes": [...]} and returns the
// normalized change list. A missing changes field yields an empty list; a
// changes field that is not an array is an error. Missing tableIndex defaults
// to -1, and any target other than "table" normalizes to "column".
func DecodeChanges(r io.Reader) ([]Change, error) {
	var doc struct {
		Changes json.RawMessage `json:"changes"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	raw := bytes.TrimSpace(doc.Changes)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if len(raw) == 0 {
			return []Change{}, nil
		}
		return nil, fmt.Errorf("invalid payload: changes must be an array")
	}
	if raw[0] != '[' {
		return nil, fmt.Errorf("invalid payload: changes must be an array")
	}

	var rawChanges []rawChange
	if err := json.Unmarshal(raw, &rawChanges); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}

	changes := make([]Change, 0, len(rawChanges))
	for _, rc := range rawChanges {
		c := Change{
			SheetName:     rc.SheetName,
			SourceAddress: rc.SourceAddress,
			BeforeName:    rc.BeforeName,
			AfterName:     rc.AfterName,
			TableIndex:    -1,
			ColumnIndex:   rc.ColumnIndex,
			Target:        "column",
		}
		if rc.TableIndex != nil {
			c.TableIndex = *rc.TableIndex
		}
		if rc.Target == "table" {
			c.Target = "table"
		}
		changes = append(changes, c)
	}
	return changes, nil
}
