package handler

import (
	"crypto-invest-wallet/internal/adapter/http/dto"
	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"
	"crypto-invest-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// FxHandler handles FX rate endpoints.
type FxHandler struct {
	oracle ports.FxOracle
}

// NewFxHandler creates a new FxHandler.
func NewFxHandler(oracle ports.FxOracle) *FxHandler {
	return &FxHandler{oracle: oracle}
}

// ListRates handles GET /api/v1/fx/rates.
func (h *FxHandler) ListRates(c *gin.Context) {
	rates, err := h.oracle.ListRates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rates)
}

// GetRate handles GET /api/v1/fx/rates/:pair.
func (h *FxHandler) GetRate(c *gin.Context) {
	pair := domain.NormalizeAsset(c.Param("pair"))
	rate, err := h.oracle.GetRate(c.Request.Context(), pair)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"pair": pair, "rate": rate})
}

// SetRate handles PUT /api/v1/admin/fx/rates, the administrative rate override.
func (h *FxHandler) SetRate(c *gin.Context) {
	var req dto.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	pair := domain.NormalizeAsset(req.Pair)
	if err := h.oracle.SetRate(c.Request.Context(), pair, req.Rate); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"pair": pair, "rate": req.Rate})
}
