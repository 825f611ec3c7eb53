package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"hse-backend/internal/shared/server/respond"
	"hse-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. The log line carries
// the import context so a crashed run can be matched to its progress record.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
			}
			if kind := c.GetString("importKind"); kind != "" {
				fields["import_kind"] = kind
				fields["run_id"] = c.GetString("importRunId")
			}
			telemetry.Error("http.panic", fields)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "unexpected server error", nil)
		}()
		c.Next()
	}
}
