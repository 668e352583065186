package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clockwork-server/services"
)

// respondError maps service error kinds to HTTP statuses. Unknown errors are
// reported as 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrPreconditionFailed),
		errors.Is(err, services.ErrDuplicateApplication):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrUnknownViolationType):
		status = http.StatusBadRequest
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": err.Error(),
	})
}

// parseIDParam reads a uint path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}
