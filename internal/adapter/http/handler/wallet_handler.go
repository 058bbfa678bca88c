package handler

import (
	"crypto-invest-wallet/internal/adapter/http/dto"
	"crypto-invest-wallet/internal/adapter/http/middleware"
	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"
	"crypto-invest-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet balance, deposit and conversion endpoints.
type WalletHandler struct {
	ledgerSvc    ports.LedgerService
	converterSvc ports.ConverterService
	portfolioSvc ports.PortfolioService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, converterSvc ports.ConverterService, portfolioSvc ports.PortfolioService) *WalletHandler {
	return &WalletHandler{
		ledgerSvc:    ledgerSvc,
		converterSvc: converterSvc,
		portfolioSvc: portfolioSvc,
	}
}

// GetBalances handles GET /api/v1/wallets.
func (h *WalletHandler) GetBalances(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallets, err := h.ledgerSvc.Balances(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries := make([]dto.BalanceEntry, 0, len(wallets))
	for _, w := range wallets {
		entries = append(entries, dto.BalanceEntry{
			Asset:     w.Asset,
			Available: w.Available,
			Frozen:    w.Frozen,
		})
	}
	response.OK(c, entries)
}

// Deposit handles POST /api/v1/wallets/deposit. A negative amount withdraws.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	asset := domain.NormalizeAsset(req.Asset)
	var (
		balance decimal.Decimal
		err     error
	)
	if req.Amount.IsNegative() {
		balance, err = h.ledgerSvc.Debit(c.Request.Context(), userID, asset, req.Amount.Neg())
	} else {
		balance, err = h.ledgerSvc.Credit(c.Request.Context(), userID, asset, req.Amount)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DepositResponse{
		Asset:   asset,
		Balance: balance,
	})
}

// Convert handles POST /api/v1/wallets/convert.
func (h *WalletHandler) Convert(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.converterSvc.Convert(c.Request.Context(), userID, req.FromAsset, req.ToAsset, req.Amount, req.FeePct)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// GetPortfolio handles GET /api/v1/portfolio.
func (h *WalletHandler) GetPortfolio(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	total, entries, err := h.portfolioSvc.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.PortfolioResponse{
		TotalUSD: total,
		Entries:  make([]dto.PortfolioEntry, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.PortfolioEntry{
			Asset:    e.Asset,
			Amount:   e.Amount,
			USDValue: e.USDValue,
			Percent:  e.Percent,
		})
	}
	response.OK(c, resp)
}
