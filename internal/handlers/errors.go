package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondWithError maps service errors to HTTP status codes. Unexpected errors are logged
// and hidden behind fallback.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var cascadeErr *apperrors.PartialCascadeError
	switch {
	case errors.As(err, &cascadeErr):
		logger.Error("Cascade delete incomplete", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Member deleted but some transactions remain; retry the delete",
			"memberID":  cascadeErr.MemberID,
			"deleted":   cascadeErr.Deleted,
			"remaining": cascadeErr.Remaining,
		})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		logger.Error("Store unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable, please retry"})
	case errors.Is(err, apperrors.ErrUnknownMember):
		logger.Warn("Unknown member", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrDuplicateMember):
		logger.Warn("Duplicate member", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "Member already exists"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
