package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/spa_ledger/internal/core/ports/services"
	"github.com/SscSPs/spa_ledger/internal/dto"
	"github.com/SscSPs/spa_ledger/internal/middleware"
	"github.com/SscSPs/spa_ledger/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests on a member's ledger.
type transactionHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newTransactionHandler(ls portssvc.LedgerSvcFacade) *transactionHandler {
	return &transactionHandler{ledgerService: ls}
}

// applyTransaction records a consumption or top-up and returns the new balance.
func (h *transactionHandler) applyTransaction(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	var req dto.ApplyTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to apply transaction", slog.String("amount", req.Amount.String()))

	balance, err := h.ledgerService.ApplyTransaction(c.Request.Context(), memberID, req.Amount, req.SignatureRef, req.Notes)
	if err != nil {
		respondWithError(c, logger, err, "Failed to apply transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.BalanceResponse{MemberID: memberID, Balance: balance})
}

// listTransactions returns the member's ledger, oldest first. Without limit or nextToken the
// whole history is returned; total always covers the whole history.
func (h *transactionHandler) listTransactions(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	limitStr, paged := c.GetQuery("limit")
	token := c.Query("nextToken")
	limit := 0
	if paged {
		var err error
		if limit, err = strconv.Atoi(limitStr); err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
	}

	txns, err := h.ledgerService.QueryMemberTransactions(c.Request.Context(), memberID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}

	resp := dto.ToListTransactionsResponse(memberID, txns)
	if paged || token != "" {
		page, next, err := pagination.PageTransactions(txns, limit, token)
		if err != nil {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nextToken: " + err.Error()})
			return
		}
		resp.Transactions = dto.ToTransactionResponses(page)
		resp.NextToken = next
	}
	c.JSON(http.StatusOK, resp)
}
