package massimport

import "errors"

var (
	// ErrPrecondition wraps failures that stop a run before any row is processed.
	ErrPrecondition = errors.New("import precondition failed")

	// ErrUnknownKind indicates an unsupported import kind.
	ErrUnknownKind = errors.New("unknown import kind")

	// ErrProgressNotFound is returned when a progress record expired or never existed.
	ErrProgressNotFound = errors.New("progress not found")
)

// Row-level failure messages. These are shown to operators and written to the
// failed-rows report.
const (
	MsgMissingCIN        = "Missing CIN"
	MsgDuplicateInSheet  = "Duplicate CIN in sheet"
	MsgMissingPDF        = "Missing PDF in ZIP for CIN"
	MsgWorkerNotFound    = "Worker not found"
	MsgAccessDenied      = "Access denied"
	MsgDuplicateRecord   = "Duplicate record"
	MsgNotEnoughStock    = "Not enough stock"
	MsgWorkerNoProject   = "Worker is not assigned to a project"
	MsgFutureDatePrefix  = "Future date not allowed: "
	MsgUnexpectedPrefix  = "Unexpected error: "
	MsgInvalidHeaders    = "Invalid template headers: missing "
	MsgMissingZip        = "ZIP file is required"
	MsgInvalidZip        = "Invalid ZIP archive"
	MsgUnreadableSheet   = "Unable to read spreadsheet"
	MsgEmptySheet        = "Spreadsheet is empty"
	MsgPDFUnusedRowError = "PDF not used: matching row failed"
	MsgPDFUnusedNoRow    = "PDF not used: no matching row in sheet"
)

// Archive annotations.
const (
	MsgNonPDF         = "Non-PDF file ignored"
	MsgInvalidCINFile = "Invalid CIN in filename"
	MsgDuplicatePDF   = "Duplicate PDF for CIN"
)
