package respond

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Attachment streams r as a download named fileName.
func Attachment(c *gin.Context, fileName, contentType string, r io.Reader) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	c.DataFromReader(http.StatusOK, -1, contentType, r, map[string]string{
		"Content-Disposition":    disposition,
		"X-Content-Type-Options": "nosniff",
	})
}
