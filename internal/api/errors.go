// ABOUTME: Maps planner and storage errors onto HTTP status codes.
// ABOUTME: Precondition failures are 412; retryable generation failures are 500.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harperreed/fitplan/internal/planner"
	"github.com/harperreed/fitplan/internal/storage"
)

func writeError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, planner.ErrProfileIncomplete):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": planner.ErrProfileIncomplete.Error()})
	case errors.Is(err, planner.ErrNoAlternative):
		c.JSON(http.StatusConflict, gin.H{"error": planner.ErrNoAlternative.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case planner.IsRetryable(err):
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "try again", "retryable": true})
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
