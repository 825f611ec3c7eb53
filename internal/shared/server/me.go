package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hse-backend/internal/access"
	"hse-backend/internal/shared/server/middleware"
	"hse-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return
	}

	role := middleware.UserRoleFromContext(c)
	response := gin.H{
		"userId":      userID,
		"role":        role,
		"globalScope": access.User{ID: userID, Role: role}.GlobalScope(),
	}
	if email := middleware.UserEmailFromContext(c); email != "" {
		response["email"] = email
	}

	respond.JSON(c, http.StatusOK, response)
}
