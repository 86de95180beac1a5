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

// memberHandler handles HTTP requests related to members.
type memberHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newMemberHandler creates a new memberHandler.
func newMemberHandler(ls portssvc.LedgerSvcFacade) *memberHandler {
	return &memberHandler{
		ledgerService: ls,
	}
}

// registerMemberRoutes registers routes related to members and their ledgers.
func registerMemberRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, signatureService portssvc.SignatureSvc) {
	h := newMemberHandler(ledgerService)
	th := newTransactionHandler(ledgerService)
	sh := newSignatureHandler(signatureService)

	members := rg.Group("/members")
	{
		members.POST("", h.createMember)
		members.GET("", h.searchMembers)
		members.GET("/:id", h.getMember)
		members.PUT("/:id", h.updateMember)
		members.DELETE("/:id", h.deleteMember)
		members.PUT("/:id/balance", h.overrideBalance)
		members.POST("/:id/reconcile", h.reconcileMember)

		members.GET("/:id/transactions", th.listTransactions)
		members.POST("/:id/transactions", th.applyTransaction)

		members.POST("/:id/signatures", sh.uploadSignature)
	}
}

// createMember enrolls a member, optionally with an initial top-up.
func (h *memberHandler) createMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	enrolled, err := domain.ParseDate(req.EnrollmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enrollmentDate must be YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("member_id", req.MemberID))
	logger.Info("Received request to create member")

	member, err := h.ledgerService.CreateMember(c.Request.Context(), req.MemberID, req.Name, enrolled, req.InitialBalance)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create member")
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberResponse(member))
}

// searchMembers lists members whose ID or name contains ?q (all members when empty).
func (h *memberHandler) searchMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	members, err := h.ledgerService.SearchMembers(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to search members")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberListResponse(members))
}

func (h *memberHandler) getMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", c.Param("id")))

	member, err := h.ledgerService.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve member")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberResponse(member))
}

func (h *memberHandler) updateMember(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	enrolled, err := domain.ParseDate(req.EnrollmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enrollmentDate must be YYYY-MM-DD"})
		return
	}

	member, err := h.ledgerService.UpdateMemberProfile(c.Request.Context(), memberID, req.Name, enrolled)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update member")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberResponse(member))
}

// confirmed reports whether the request repeats the member ID in ?confirm. Otherwise it
// answers 409 with the member's summary so the caller can show what is about to change.
func (h *memberHandler) confirmed(c *gin.Context, logger *slog.Logger, memberID, action string) bool {
	if strings.TrimSpace(c.Query("confirm")) == memberID {
		return true
	}

	summary, err := h.ledgerService.DescribeMember(c.Request.Context(), memberID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve member")
		return false
	}
	logger.Info("Unconfirmed request rejected", slog.String("action", action))
	c.JSON(http.StatusConflict, dto.ToMemberSummaryResponse(summary, action+" requires ?confirm=<memberID>"))
	return false
}

// deleteMember removes a member and every transaction it owns. Requires ?confirm=<id>.
func (h *memberHandler) deleteMember(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	if !h.confirmed(c, logger, memberID, "delete") {
		return
	}

	if err := h.ledgerService.DeleteMember(c.Request.Context(), memberID); err != nil {
		respondWithError(c, logger, err, "Failed to delete member")
		return
	}

	logger.Info("Member deleted via API")
	c.Status(http.StatusNoContent)
}

// overrideBalance sets the balance administratively. Requires ?confirm=<id>.
func (h *memberHandler) overrideBalance(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	var req dto.OverrideBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if !h.confirmed(c, logger, memberID, "balance override") {
		return
	}

	balance, err := h.ledgerService.OverrideBalance(c.Request.Context(), memberID, req.Balance)
	if err != nil {
		respondWithError(c, logger, err, "Failed to override balance")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{MemberID: memberID, Balance: balance})
}

// reconcileMember compares the stored balance with the ledger; ?repair=true fixes drift.
func (h *memberHandler) reconcileMember(c *gin.Context) {
	memberID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("member_id", memberID))

	drift, err := h.ledgerService.ReconcileMember(c.Request.Context(), memberID, c.Query("repair") == "true")
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile member")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceDriftResponse(*drift))
}

// reconcileAll reports every drifted member; ?repair=true fixes them.
func (h *memberHandler) reconcileAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	repair := c.Query("repair") == "true"

	drifts, err := h.ledgerService.ReconcileAll(c.Request.Context(), repair)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile members")
		return
	}

	resp := dto.ReconcileAllResponse{Drifted: make([]dto.BalanceDriftResponse, len(drifts)), Repair: repair}
	for i, d := range drifts {
		resp.Drifted[i] = dto.ToBalanceDriftResponse(d)
	}
	c.JSON(http.StatusOK, resp)
}
