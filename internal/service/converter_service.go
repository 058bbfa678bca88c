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

var oneHundred = decimal.NewFromInt(100)

// ConverterServiceImpl implements ports.ConverterService. Both legs of a
// conversion run in one transaction: the source wallet is debited first, the
// USD bridge value is computed at current rates, the fee is taken in USD and
// the destination wallet is credited with the remainder.
type ConverterServiceImpl struct {
	ledger     ports.TxLedger
	oracle     ports.FxOracle
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewConverterService creates a new ConverterServiceImpl.
func NewConverterService(ledger ports.TxLedger, oracle ports.FxOracle, transactor ports.DBTransactor, log zerolog.Logger) *ConverterServiceImpl {
	return &ConverterServiceImpl{
		ledger:     ledger,
		oracle:     oracle,
		transactor: transactor,
		log:        log,
	}
}

// Convert moves amount of fromAsset into toAsset through the USD bridge,
// charging feePct percent of the gross USD value.
func (s *ConverterServiceImpl) Convert(ctx context.Context, userID uuid.UUID, fromAsset, toAsset string, amount, feePct decimal.Decimal) (*ports.ConversionResult, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if feePct.IsNegative() || feePct.GreaterThanOrEqual(oneHundred) {
		return nil, apperror.Validation("fee percent must be in [0, 100)")
	}

	fromAsset = domain.NormalizeAsset(fromAsset)
	toAsset = domain.NormalizeAsset(toAsset)
	if fromAsset == toAsset {
		return nil, apperror.Validation("cannot convert an asset to itself")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	fromAmount := domain.RoundAmount(fromAsset, amount)
	if _, err := s.ledger.DebitTx(ctx, dbTx, userID, fromAsset, fromAmount); err != nil {
		return nil, err
	}

	fromRate, err := s.oracle.GetRate(ctx, domain.USDPair(fromAsset))
	if err != nil {
		return nil, err
	}
	toRate, err := s.oracle.GetRate(ctx, domain.USDPair(toAsset))
	if err != nil {
		return nil, err
	}

	grossUSD := fromAmount.Mul(fromRate)
	netUSD := grossUSD.Sub(grossUSD.Mul(feePct).Div(oneHundred))
	toAmount := domain.RoundAmount(toAsset, netUSD.Div(toRate))

	if _, err := s.ledger.CreditTx(ctx, dbTx, userID, toAsset, toAmount); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("from", fromAsset).
		Str("from_amount", fromAmount.String()).
		Str("to", toAsset).
		Str("to_amount", toAmount.String()).
		Msg("conversion executed")

	return &ports.ConversionResult{
		FromAsset:  fromAsset,
		FromAmount: fromAmount,
		ToAsset:    toAsset,
		ToAmount:   toAmount,
		FromRate:   fromRate,
		ToRate:     toRate,
		FeePct:     feePct,
		GrossUSD:   grossUSD,
		NetUSD:     netUSD,
	}, nil
}
