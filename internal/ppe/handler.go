package ppe

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hse-backend/internal/access"
	"hse-backend/internal/shared/server/middleware"
	"hse-backend/internal/shared/server/respond"
)

type Handler struct {
	Ledger Ledger
	Access access.Checker
}

func NewHandler(ledger Ledger, checker access.Checker) *Handler {
	return &Handler{Ledger: ledger, Access: checker}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ppe/stock", h.stock)
}

func (h *Handler) stock(c *gin.Context) {
	if h.Ledger == nil || h.Access == nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "service unavailable", nil)
		return
	}
	projectID, err := strconv.ParseInt(strings.TrimSpace(c.Query("project_id")), 10, 64)
	if err != nil || projectID <= 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidProject, "project_id must be a positive integer", nil)
		return
	}

	user := access.User{ID: middleware.UserIDFromContext(c), Role: middleware.UserRoleFromContext(c)}
	ok, err := h.Access.CanAccess(c.Request.Context(), user, projectID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to check access", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "access denied", nil)
		return
	}

	lines, err := h.Ledger.Stock(c.Request.Context(), projectID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to load stock", nil)
		return
	}
	if lines == nil {
		lines = []StockLine{}
	}
	respond.OK(c, gin.H{"projectId": projectID, "items": lines})
}
