package service

import (
	"context"
	"fmt"

	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PortfolioServiceImpl implements ports.PortfolioService: a USD-equivalent
// valuation of all of a user's wallets at current rates.
type PortfolioServiceImpl struct {
	walletRepo ports.WalletRepository
	oracle     ports.FxOracle
	log        zerolog.Logger
}

// NewPortfolioService creates a new PortfolioServiceImpl.
func NewPortfolioService(walletRepo ports.WalletRepository, oracle ports.FxOracle, log zerolog.Logger) *PortfolioServiceImpl {
	return &PortfolioServiceImpl{
		walletRepo: walletRepo,
		oracle:     oracle,
		log:        log,
	}
}

// GetPortfolio values every non-empty wallet in USD and reports each asset's
// share of the total. Assets without a rate fail the whole valuation rather
// than silently shrinking the total.
func (s *PortfolioServiceImpl) GetPortfolio(ctx context.Context, userID uuid.UUID) (decimal.Decimal, []ports.PortfolioEntry, error) {
	wallets, err := s.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	total := decimal.Zero
	entries := make([]ports.PortfolioEntry, 0, len(wallets))
	for _, w := range wallets {
		if w.Available.IsZero() {
			continue
		}
		usdValue, err := s.oracle.USDValue(ctx, w.Asset, w.Available)
		if err != nil {
			if apperror.Is(err, apperror.CodeUnknownPair) {
				return decimal.Zero, nil, apperror.ErrMissingFxRate(w.Asset)
			}
			return decimal.Zero, nil, err
		}
		usdValue = domain.RoundAmount(domain.AssetUSD, usdValue)
		total = total.Add(usdValue)
		entries = append(entries, ports.PortfolioEntry{
			Asset:    w.Asset,
			Amount:   w.Available,
			USDValue: usdValue,
		})
	}

	if total.IsPositive() {
		for i := range entries {
			entries[i].Percent = entries[i].USDValue.Div(total).Mul(oneHundred).Round(2)
		}
	}
	return total, entries, nil
}
