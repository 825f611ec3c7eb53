package massimport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// ZipError annotates an archive entry that could not be indexed.
type ZipError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ArchiveIndex maps normalized CINs to the PDF entry carrying their document.
type ArchiveIndex struct {
	docs    map[string]*zip.File
	order   []string
	entries []string
	errors  []ZipError
}

// IndexArchive scans a ZIP archive. Only an unreadable archive is an error;
// every other anomaly is recorded as a ZipError and indexing continues.
func IndexArchive(data []byte) (*ArchiveIndex, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	idx := &ArchiveIndex{docs: make(map[string]*zip.File)}
	for _, f := range zr.File {
		name := f.Name
		if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") || isMetadataEntry(name) {
			continue
		}
		idx.entries = append(idx.entries, name)

		base := path.Base(strings.ReplaceAll(name, "\\", "/"))
		if !strings.EqualFold(path.Ext(base), ".pdf") {
			idx.errors = append(idx.errors, ZipError{File: name, Error: MsgNonPDF})
			continue
		}
		cin := NormalizeIdentifier(strings.TrimSuffix(base, path.Ext(base)))
		if cin == "" {
			idx.errors = append(idx.errors, ZipError{File: name, Error: MsgInvalidCINFile})
			continue
		}
		if _, dup := idx.docs[cin]; dup {
			idx.errors = append(idx.errors, ZipError{File: name, Error: MsgDuplicatePDF})
			continue
		}
		idx.docs[cin] = f
		idx.order = append(idx.order, cin)
	}
	return idx, nil
}

// isMetadataEntry reports OS metadata such as __MACOSX/ folders and dot files.
func isMetadataEntry(name string) bool {
	clean := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(clean, "__MACOSX/") || strings.Contains(clean, "/__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(clean), ".")
}

// Lookup returns the entry name holding the document for cin.
func (a *ArchiveIndex) Lookup(cin string) (string, bool) {
	if a == nil {
		return "", false
	}
	f, ok := a.docs[cin]
	if !ok {
		return "", false
	}
	return f.Name, true
}

// Read returns the document bytes for cin.
func (a *ArchiveIndex) Read(cin string) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("no archive")
	}
	f, ok := a.docs[cin]
	if !ok {
		return nil, fmt.Errorf("no document for %s", cin)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

// CINs lists indexed identifiers in archive order.
func (a *ArchiveIndex) CINs() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.order...)
}

// Entries lists every file entry considered, directories and OS metadata excluded.
func (a *ArchiveIndex) Entries() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.entries...)
}

func (a *ArchiveIndex) Errors() []ZipError {
	if a == nil {
		return nil
	}
	return append([]ZipError(nil), a.errors...)
}
