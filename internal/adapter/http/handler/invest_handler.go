package handler

import (
	"crypto-invest-wallet/internal/adapter/http/dto"
	"crypto-invest-wallet/internal/adapter/http/middleware"
	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"
	"crypto-invest-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// InvestHandler handles investment accrual endpoints.
type InvestHandler struct {
	investSvc ports.InvestmentService
}

// NewInvestHandler creates a new InvestHandler.
func NewInvestHandler(investSvc ports.InvestmentService) *InvestHandler {
	return &InvestHandler{investSvc: investSvc}
}

// Deposit handles POST /api/v1/invest/deposit.
func (h *InvestHandler) Deposit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InvestDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	record, err := h.investSvc.Deposit(c.Request.Context(), userID, req.Asset, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toInvestmentResponse(record))
}

// Status handles GET /api/v1/invest/status.
func (h *InvestHandler) Status(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	status, err := h.investSvc.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, status)
}

// Reinvest handles POST /api/v1/invest/reinvest.
func (h *InvestHandler) Reinvest(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	record, err := h.investSvc.Reinvest(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toInvestmentResponse(record))
}

// Claim handles POST /api/v1/invest/claim.
func (h *InvestHandler) Claim(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	claimed, err := h.investSvc.Claim(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ClaimResponse{
		Asset:   domain.AssetUSD,
		Claimed: claimed,
	})
}

// SetAutoCompound handles PUT /api/v1/invest/auto-compound.
func (h *InvestHandler) SetAutoCompound(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AutoCompoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.investSvc.SetAutoCompound(c.Request.Context(), userID, *req.Enabled); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"auto_compound": *req.Enabled})
}

func toInvestmentResponse(record *domain.InvestmentRecord) dto.InvestmentResponse {
	return dto.InvestmentResponse{
		Principal:    record.Principal,
		AutoCompound: record.AutoCompound,
		WindowStart:  record.WindowStart,
	}
}
