// Package zip packs a set of generated images into a single archive for the
// "download all" gallery action.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Entry is one image destined for the archive.
type Entry struct {
	Filename string
	Data     []byte
}

// Archive writes every entry into an in-memory zip.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", entry.Filename, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", entry.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
