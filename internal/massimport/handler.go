package massimport

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hse-backend/internal/access"
	"hse-backend/internal/extract"
	"hse-backend/internal/shared/server/middleware"
	"hse-backend/internal/shared/server/respond"
	"hse-backend/internal/shared/storage/object"
	"hse-backend/internal/shared/util"
)

const (
	defaultMaxUploadBytes = 50 << 20 // 50MB
	multipartMemory       = 32 << 20
)

const (
	importKindKey  = "importKind"
	importRunIDKey = "importRunId"
)

// Handler wires HTTP handlers to the import service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches import routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports/:kind", h.run)
	rg.GET("/imports/progress/:id", h.progress)
	rg.GET("/imports/reports/:file", h.report)
}

func (h *Handler) run(c *gin.Context) {
	kind := Kind(strings.ToLower(strings.TrimSpace(c.Param("kind"))))
	schema, err := SchemaFor(kind)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeUnknownKind, "unknown import kind", gin.H{"kinds": Kinds()})
		return
	}
	c.Set(importKindKey, string(kind))

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		if tooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, "upload exceeds size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "multipart form expected", nil)
		return
	}
	runID := strings.TrimSpace(c.PostForm("progress_id"))

	sheetHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file is required", nil)
		return
	}
	sheet, err := readPart(sheetHeader)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}

	var archive []byte
	if zipHeader, err := c.FormFile("zip"); err == nil {
		archive, err = readPart(zipHeader)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read zip", nil)
			return
		}
	} else if schema.RequiresDocument {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, MsgMissingZip, nil)
		return
	}

	if runID == "" {
		runID = uuid.NewString()
	}
	c.Set(importRunIDKey, runID)
	c.Header("X-Import-Progress-Id", runID)

	summary, err := h.Svc.Run(c.Request.Context(), Request{
		Kind:       kind,
		SheetName:  sheetHeader.Filename,
		Sheet:      sheet,
		Archive:    archive,
		ProgressID: runID,
		Locale:     firstNonEmpty(c.PostForm("locale"), c.GetHeader("Accept-Language")),
		User: access.User{
			ID:   middleware.UserIDFromContext(c),
			Role: middleware.UserRoleFromContext(c),
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPrecondition):
			respond.JSON(c, http.StatusUnprocessableEntity, summary)
		case errors.Is(err, ErrUnknownKind):
			respond.Error(c, http.StatusBadRequest, respond.CodeUnknownKind, err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "import failed", nil)
		}
		return
	}

	respond.OK(c, summary)
}

func (h *Handler) progress(c *gin.Context) {
	p, err := h.Svc.GetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrProgressNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "progress not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to load progress", nil)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) report(c *gin.Context) {
	name, err := util.SanitizeFileName(c.Param("file"))
	if err != nil || name != c.Param("file") || !strings.HasSuffix(name, ".xlsx") {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid report name", nil)
		return
	}
	if h.Svc.Store == nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "storage unavailable", nil)
		return
	}

	rc, err := h.Svc.Store.Open(c.Request.Context(), ReportPrefix+name)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "report not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to open report", nil)
		return
	}
	defer rc.Close()

	respond.Attachment(c, name, extract.MimeXLSX, rc)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
