package api

import (
	"errors"
	"log/slog"
	"net/http"

	"pxv-pay/internal/db"
	"pxv-pay/internal/model"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Infrastructure errors
// are logged with the request context and never leak to the client.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case model.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, db.ErrConstraint):
		c.JSON(http.StatusBadRequest, gin.H{"error": "request violates a data constraint"})
	default:
		logger.ErrorContext(c.Request.Context(), "Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
