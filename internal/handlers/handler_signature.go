package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/SscSPs/spa_ledger/internal/dto"
	"github.com/SscSPs/spa_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// signatureHandler handles signature image uploads and downloads.
type signatureHandler struct {
	signatureService portssvc.SignatureSvc
}

func newSignatureHandler(ss portssvc.SignatureSvc) *signatureHandler {
	return &signatureHandler{signatureService: ss}
}

func registerSignatureRoutes(rg *gin.RouterGroup, signatureService portssvc.SignatureSvc) {
	h := newSignatureHandler(signatureService)
	rg.GET("/signatures/*key", h.getSignature)
}

// uploadSignature stores a captured signature and returns its key.
func (h *signatureHandler) uploadSignature(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	var req dto.UploadSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	key, err := h.signatureService.UploadSignature(c.Request.Context(), memberID, []byte(req.Image))
	if err != nil {
		respondWithError(c, logger, err, "Failed to store signature")
		return
	}

	c.JSON(http.StatusCreated, dto.UploadSignatureResponse{Key: key})
}

// getSignature serves a stored signature image by key, e.g. /signatures/signatures/00042/<uuid>.png.
func (h *signatureHandler) getSignature(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("key", key))

	img, err := h.signatureService.GetSignature(c.Request.Context(), key)
	if err != nil {
		respondWithError(c, logger, err, "Failed to load signature")
		return
	}

	c.Header("Cache-Control", "private, max-age=86400, immutable")
	c.Data(http.StatusOK, domain.SignatureContentType, img)
}
