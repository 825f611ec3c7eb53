package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeCSV  = "text/csv"
	MimeZIP  = "application/zip"
)

var pdfMagic = []byte("%PDF-")

// PageCount returns the number of pages of a PDF payload.
// Library used: github.com/ledongthuc/pdf.
func PageCount(data []byte) (n int, err error) {
	if len(data) == 0 {
		return 0, errors.New("empty pdf data")
	}
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if p := recover(); p != nil {
			n, err = 0, fmt.Errorf("parse pdf: %v", p)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return reader.NumPage(), nil
}

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic)
}

// DetectMime infers the content type of an uploaded or stored file from its
// name, using the payload to tell workbooks from plain zip archives.
func DetectMime(fileName string, data []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".xlsx", ".xlsm":
		return MimeXLSX
	case ".csv":
		return MimeCSV
	case ".zip":
		return MimeZIP
	}
	if IsPDF(data) {
		return MimePDF
	}
	if bytes.HasPrefix(data, []byte("PK")) {
		if bytes.Contains(data, []byte("xl/workbook.xml")) {
			return MimeXLSX
		}
		return MimeZIP
	}
	return "application/octet-stream"
}
