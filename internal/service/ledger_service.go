package service

import (
	"context"
	"fmt"

	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService and ports.TxLedger with
// pessimistic per-(user, asset) row locking. Wallets are created lazily at
// zero on first reference.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(walletRepo ports.WalletRepository, transactor ports.DBTransactor, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
	}
}

// Credit adds amount to the user's available balance and returns the new
// balance rounded to the asset's fixed precision.
func (s *LedgerServiceImpl) Credit(ctx context.Context, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		newBalance, err = s.CreditTx(ctx, tx, userID, asset, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("asset", asset).
		Str("amount", amount.String()).
		Str("balance", newBalance.String()).
		Msg("wallet credited")

	return newBalance, nil
}

// Debit subtracts amount from the user's available balance. Fails with
// InsufficientBalance when the balance does not cover the amount; the balance
// never goes negative.
func (s *LedgerServiceImpl) Debit(ctx context.Context, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		newBalance, err = s.DebitTx(ctx, tx, userID, asset, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("asset", asset).
		Str("amount", amount.String()).
		Str("balance", newBalance.String()).
		Msg("wallet debited")

	return newBalance, nil
}

// Balances lists all wallets for a user.
func (s *LedgerServiceImpl) Balances(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list balances: %w", err))
	}
	return wallets, nil
}

// CreditTx adds amount to the wallet inside a caller-supplied transaction.
// The amount is rounded to the asset's fixed precision before applying.
func (s *LedgerServiceImpl) CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	asset = domain.NormalizeAsset(asset)

	wallet, err := s.fetchOrCreateWallet(ctx, tx, userID, asset)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := wallet.Available.Add(domain.RoundAmount(asset, amount))
	if err := s.walletRepo.UpdateBalance(ctx, tx, userID, asset, newBalance, wallet.Frozen); err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return newBalance, nil
}

// DebitTx subtracts amount from the wallet inside a caller-supplied
// transaction, enforcing non-negativity.
func (s *LedgerServiceImpl) DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	asset = domain.NormalizeAsset(asset)

	wallet, err := s.fetchOrCreateWallet(ctx, tx, userID, asset)
	if err != nil {
		return decimal.Zero, err
	}

	rounded := domain.RoundAmount(asset, amount)
	if !wallet.CanDebit(rounded) {
		return decimal.Zero, apperror.ErrInsufficientBalance()
	}

	newBalance := wallet.Available.Sub(rounded)
	if err := s.walletRepo.UpdateBalance(ctx, tx, userID, asset, newBalance, wallet.Frozen); err != nil {
		return decimal.Zero, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return newBalance, nil
}

// inTx runs fn inside a transaction with rollback-on-error.
func (s *LedgerServiceImpl) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := fn(dbTx); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// fetchOrCreateWallet locks the wallet row, inserting a zero wallet first
// when the user has never touched the asset.
func (s *LedgerServiceImpl) fetchOrCreateWallet(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetForUpdate(ctx, tx, userID, asset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = domain.NewWallet(userID, asset, nowUTC())
	if err := s.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}
	return wallet, nil
}
