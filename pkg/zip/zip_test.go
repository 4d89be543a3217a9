package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveRoundTrip(t *testing.T) {
	entries := []Entry{
		{Filename: "prolink-headshot-1.png", Data: []byte("first")},
		{Filename: "prolink-headshot-2.png", Data: []byte("second")},
	}

	data, err := Archive(entries)
	if err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive holds %d files, want 2", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != entries[i].Filename {
			t.Errorf("file %d name = %q, want %q", i, f.Name, entries[i].Filename)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if !bytes.Equal(content, entries[i].Data) {
			t.Errorf("%s content = %q", f.Name, content)
		}
	}
}

func TestArchiveEmpty(t *testing.T) {
	data, err := Archive(nil)
	if err != nil {
		t.Fatalf("Archive(nil) error: %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("empty archive unreadable: %v", err)
	}
}
