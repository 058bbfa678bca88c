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

// SettlementServiceImpl implements ports.SettlementService. A settlement
// credits the user's wallet and appends an immutable payout record in one
// transaction; which asset gets credited depends on the user's
// convert-to-USD preference.
type SettlementServiceImpl struct {
	userRepo   ports.UserRepository
	payoutRepo ports.PayoutRepository
	ledger     ports.TxLedger
	oracle     ports.FxOracle
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(userRepo ports.UserRepository, payoutRepo ports.PayoutRepository, ledger ports.TxLedger, oracle ports.FxOracle, transactor ports.DBTransactor, log zerolog.Logger) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		userRepo:   userRepo,
		payoutRepo: payoutRepo,
		ledger:     ledger,
		oracle:     oracle,
		transactor: transactor,
		log:        log,
	}
}

// Settle records a payout of amount currency for a plan. When the user has
// opted into USD conversion the credit lands in the USD wallet at the
// current rate; a missing rate fails the whole settlement.
func (s *SettlementServiceImpl) Settle(ctx context.Context, userID uuid.UUID, planID string, amount decimal.Decimal, currency string) (*domain.Payout, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	currency = domain.NormalizeAsset(currency)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound()
	}

	payout := &domain.Payout{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    planID,
		Currency:  currency,
		Amount:    domain.RoundAmount(currency, amount),
		CreatedAt: nowUTC(),
	}

	creditAsset := currency
	creditAmount := payout.Amount
	if user.ConvertToUSD && currency != domain.AssetUSD {
		rate, err := s.oracle.GetRate(ctx, domain.USDPair(currency))
		if err != nil {
			if apperror.Is(err, apperror.CodeUnknownPair) {
				return nil, apperror.ErrMissingFxRate(currency)
			}
			return nil, err
		}
		usdAmount := domain.RoundAmount(domain.AssetUSD, payout.Amount.Mul(rate))
		payout.Rate = &rate
		payout.USDAmount = &usdAmount
		payout.Converted = true
		creditAsset = domain.AssetUSD
		creditAmount = usdAmount
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if _, err := s.ledger.CreditTx(ctx, dbTx, userID, creditAsset, creditAmount); err != nil {
		return nil, err
	}
	if err := s.payoutRepo.Create(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("plan_id", planID).
		Str("currency", currency).
		Str("amount", payout.Amount.String()).
		Bool("converted", payout.Converted).
		Msg("payout settled")

	return payout, nil
}

// PayoutHistory lists the user's payout records, newest first.
func (s *SettlementServiceImpl) PayoutHistory(ctx context.Context, userID uuid.UUID) ([]domain.Payout, error) {
	payouts, err := s.payoutRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payouts: %w", err))
	}
	return payouts, nil
}
