package handler

import (
	"crypto-invest-wallet/internal/adapter/http/dto"
	"crypto-invest-wallet/internal/adapter/http/middleware"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"
	"crypto-invest-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles ROI payout settlement and history endpoints.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementSvc ports.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc}
}

// Settle handles POST /api/v1/admin/settlements. It resolves a ROI payout
// event into a wallet credit plus an immutable payout record.
func (h *SettlementHandler) Settle(c *gin.Context) {
	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(c, apperror.Validation("user_id must be a valid UUID"))
		return
	}

	payout, err := h.settlementSvc.Settle(c.Request.Context(), userID, req.PlanID, req.Amount, req.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, payout)
}

// History handles GET /api/v1/payouts.
func (h *SettlementHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payouts, err := h.settlementSvc.PayoutHistory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, payouts)
}
