package xlpatch

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeArchive streams every member of src to a new archive on w. Members
// named in replacements are rewritten with the supplied bytes under a copy of
// their original header; all other members are raw-copied, keeping their
// compressed bytes, compression method, timestamps, and flags untouched.
func writeArchive(w io.Writer, src *zip.Reader, replacements map[string][]byte) error {
	zw := zip.NewWriter(w)
	for _, f := range src.File {
		data, ok := replacements[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		header := f.FileHeader
		fw, err := zw.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("rewrite %s: %w", f.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("rewrite %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// writeArchiveBytes is writeArchive into memory.
func writeArchiveBytes(src *zip.Reader, replacements map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeArchive(&buf, src, replacements); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rewriteArchive replaces the archive at path with a copy carrying the
// replacement members. The copy goes to a temp file in the same directory,
// is flushed and closed, and only then renamed over the original, so a
// failure at any point leaves the original untouched and removes the temp.
func rewriteArchive(path string, replacements map[string][]byte) (err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer zr.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".xlpatch-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = writeArchive(tmp, &zr.Reader, replacements); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("flush temp archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp archive: %w", err)
	}
	zr.Close()
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}
