package xlpatch

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	workbookEntry      = "xl/workbook.xml"
	workbookRelsEntry  = "xl/_rels/workbook.xml.rels"
	sharedStringsEntry = "xl/sharedStrings.xml"
)

// Read-only models for the workbook and relationship parts. These feed the
// sheet-name lookup only; the mutable worksheet markup never goes through
// struct decoding.
type xlsxWorkbook struct {
	Sheets []xlsxSheet `xml:"sheets>sheet"`
}

type xlsxSheet struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xlsxRelationships struct {
	Relationships []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

// Patch applies changes to the workbook archive at workbookPath in place.
// Untouched archive members are copied through byte-identical, and the
// rewritten archive replaces the original atomically; on any failure the
// original file is left as it was. Per-change rejections are collected into
// the result, never returned as errors.
func Patch(workbookPath string, changes []Change, opts ...Option) (*Result, error) {
	o := applyOptions(opts)
	changes, err := o.filterChanges(changes)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(workbookPath)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", workbookPath, err)
	}
	res, replacements, err := patchArchive(&zr.Reader, changes)
	zr.Close()
	if err != nil {
		return nil, err
	}

	if len(replacements) > 0 && !o.dryRun {
		if err := rewriteArchive(workbookPath, replacements); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// PatchBytes is Patch for callers holding the archive in memory. It returns
// the rewritten archive alongside the result; when nothing was patched the
// input bytes come back unchanged.
func PatchBytes(workbook []byte, changes []Change, opts ...Option) ([]byte, *Result, error) {
	o := applyOptions(opts)
	changes, err := o.filterChanges(changes)
	if err != nil {
		return nil, nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(workbook), int64(len(workbook)))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	res, replacements, err := patchArchive(zr, changes)
	if err != nil {
		return nil, nil, err
	}
	if len(replacements) == 0 || o.dryRun {
		return workbook, res, nil
	}

	out, err := writeArchiveBytes(zr, replacements)
	if err != nil {
		return nil, nil, err
	}
	return out, res, nil
}

// patchArchive computes all patches against an open archive: it resolves
// sheet names, groups changes by worksheet entry in first-appearance order,
// and patches each targeted worksheet once. It returns the result plus the
// patched bytes per entry path; nothing is written here.
func patchArchive(zr *zip.Reader, changes []Change) (*Result, map[string][]byte, error) {
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	shared, err := loadSharedStrings(entries)
	if err != nil {
		return nil, nil, err
	}
	sheetPaths, err := resolveSheetPaths(entries)
	if err != nil {
		return nil, nil, err
	}

	issues := []Issue{}
	var order []string
	grouped := make(map[string][]Change)
	for _, c := range changes {
		target, ok := sheetPaths[c.SheetName]
		if !ok {
			issues = append(issues, issueFor(c, "Worksheet not found in workbook"))
			continue
		}
		if _, seen := grouped[target]; !seen {
			order = append(order, target)
		}
		grouped[target] = append(grouped[target], c)
	}

	applied := 0
	replacements := make(map[string][]byte)
	for _, entryPath := range order {
		group := grouped[entryPath]
		entry, ok := entries[entryPath]
		if !ok {
			for _, c := range group {
				issues = append(issues, issueFor(c, "Worksheet xml entry not found in workbook zip"))
			}
			continue
		}
		sheetXML, err := readEntry(entry)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", entryPath, err)
		}
		patched, n, sheetIssues, err := PatchSheet(sheetXML, shared, group)
		if err != nil {
			return nil, nil, fmt.Errorf("patch %s: %w", entryPath, err)
		}
		replacements[entryPath] = patched
		applied += n
		issues = append(issues, sheetIssues...)
	}

	return &Result{AppliedCount: applied, Issues: issues}, replacements, nil
}

// loadSharedStrings reads the shared-string table, which is optional: a
// workbook without one resolves every shared reference to its raw index.
func loadSharedStrings(entries map[string]*zip.File) (SharedStrings, error) {
	entry, ok := entries[sharedStringsEntry]
	if !ok {
		return nil, nil
	}
	data, err := readEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sharedStringsEntry, err)
	}
	return parseSharedStrings(data)
}

// resolveSheetPaths maps logical sheet names to worksheet entry paths by
// joining the workbook's sheet list with its relationship targets. Relative
// targets resolve against xl/; absolute targets are archive-rooted.
func resolveSheetPaths(entries map[string]*zip.File) (map[string]string, error) {
	wbData, err := readNamedEntry(entries, workbookEntry)
	if err != nil {
		return nil, err
	}
	relsData, err := readNamedEntry(entries, workbookRelsEntry)
	if err != nil {
		return nil, err
	}

	var wb xlsxWorkbook
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return nil, fmt.Errorf("parse %s: %w", workbookEntry, err)
	}
	var rels xlsxRelationships
	if err := xml.Unmarshal(relsData, &rels); err != nil {
		return nil, fmt.Errorf("parse %s: %w", workbookRelsEntry, err)
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		if rel.ID != "" && rel.Target != "" {
			targets[rel.ID] = rel.Target
		}
	}

	paths := make(map[string]string, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		if sheet.Name == "" || sheet.RID == "" {
			continue
		}
		target, ok := targets[sheet.RID]
		if !ok {
			continue
		}
		if strings.HasPrefix(target, "/") {
			paths[sheet.Name] = strings.TrimLeft(target, "/")
		} else {
			paths[sheet.Name] = path.Join("xl", target)
		}
	}
	return paths, nil
}

func readNamedEntry(entries map[string]*zip.File, name string) ([]byte, error) {
	entry, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("%s not found in workbook zip", name)
	}
	return readEntry(entry)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
