package service

import (
	"context"
	"fmt"
	"time"

	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports"
	"crypto-invest-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InvestmentServiceImpl implements ports.InvestmentService. Principal is
// USD-denominated; interest accrues linearly at dailyRate within the open
// window and compounds only when folded back by Reinvest or the sweeper.
type InvestmentServiceImpl struct {
	investRepo ports.InvestmentRepository
	ledger     ports.TxLedger
	oracle     ports.FxOracle
	transactor ports.DBTransactor
	dailyRate  decimal.Decimal
	log        zerolog.Logger
	now        func() time.Time
}

// NewInvestmentService creates a new InvestmentServiceImpl. dailyRatePct is
// the simple interest rate in percent per day (1.5 means 1.5%/day).
func NewInvestmentService(investRepo ports.InvestmentRepository, ledger ports.TxLedger, oracle ports.FxOracle, transactor ports.DBTransactor, dailyRatePct float64, log zerolog.Logger) *InvestmentServiceImpl {
	return &InvestmentServiceImpl{
		investRepo: investRepo,
		ledger:     ledger,
		oracle:     oracle,
		transactor: transactor,
		dailyRate:  decimal.NewFromFloat(dailyRatePct).Div(oneHundred),
		log:        log,
		now:        nowUTC,
	}
}

// Deposit debits amount of asset from the user's wallet, converts it to USD
// at the current rate and adds it to principal. The accrual window restarts
// at the deposit instant; interest accrued so far in the old window is
// discarded, not realized.
func (s *InvestmentServiceImpl) Deposit(ctx context.Context, userID uuid.UUID, asset string, amount decimal.Decimal) (*domain.InvestmentRecord, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	asset = domain.NormalizeAsset(asset)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	debited := domain.RoundAmount(asset, amount)
	if _, err := s.ledger.DebitTx(ctx, dbTx, userID, asset, debited); err != nil {
		return nil, err
	}

	usdValue, err := s.oracle.USDValue(ctx, asset, debited)
	if err != nil {
		return nil, err
	}
	usdValue = domain.RoundAmount(domain.AssetUSD, usdValue)
	if !usdValue.IsPositive() {
		return nil, apperror.ErrInvalidInvestAmount()
	}

	record, err := s.lockOrCreateRecord(ctx, dbTx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record.Principal = record.Principal.Add(usdValue)
	record.WindowStart = &now
	record.UpdatedAt = now
	if err := s.investRepo.Update(ctx, dbTx, record); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update investment: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("asset", asset).
		Str("amount", debited.String()).
		Str("usd_value", usdValue.String()).
		Str("principal", record.Principal.String()).
		Msg("investment deposit")

	return record, nil
}

// Status returns a read-only projection of the user's investment, including
// interest accrued so far in the open window. Users who never invested get
// a zero status.
func (s *InvestmentServiceImpl) Status(ctx context.Context, userID uuid.UUID) (*ports.InvestmentStatus, error) {
	record, err := s.investRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get investment: %w", err))
	}
	if record == nil {
		record = domain.NewInvestmentRecord(userID, s.now())
	}

	now := s.now()
	return &ports.InvestmentStatus{
		Principal:     record.Principal,
		DailyRate:     s.dailyRate,
		Accrued:       domain.RoundAmount(domain.AssetUSD, record.Accrued(s.dailyRate, now)),
		AutoCompound:  record.AutoCompound,
		WindowStart:   record.WindowStart,
		SecondsToNext: record.SecondsToNextDay(now),
	}, nil
}

// Reinvest folds the interest accrued so far into principal and restarts the
// window at the fold instant.
func (s *InvestmentServiceImpl) Reinvest(ctx context.Context, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	var record *domain.InvestmentRecord
	err := s.withLockedRecord(ctx, userID, func(tx pgx.Tx, r *domain.InvestmentRecord) error {
		now := s.now()
		accrued := domain.RoundAmount(domain.AssetUSD, r.Accrued(s.dailyRate, now))
		r.Principal = r.Principal.Add(accrued)
		r.WindowStart = &now
		r.UpdatedAt = now
		record = r

		s.log.Info().
			Str("user_id", userID.String()).
			Str("accrued", accrued.String()).
			Str("principal", r.Principal.String()).
			Msg("interest reinvested")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Claim credits the interest accrued so far to the user's USD wallet without
// touching principal, and restarts the window.
func (s *InvestmentServiceImpl) Claim(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var claimed decimal.Decimal
	err := s.withLockedRecord(ctx, userID, func(tx pgx.Tx, r *domain.InvestmentRecord) error {
		now := s.now()
		claimed = domain.RoundAmount(domain.AssetUSD, r.Accrued(s.dailyRate, now))
		if claimed.IsPositive() {
			if _, err := s.ledger.CreditTx(ctx, tx, userID, domain.AssetUSD, claimed); err != nil {
				return err
			}
		}
		r.WindowStart = &now
		r.UpdatedAt = now

		s.log.Info().
			Str("user_id", userID.String()).
			Str("claimed", claimed.String()).
			Msg("interest claimed")
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return claimed, nil
}

// SetAutoCompound toggles the sweeper opt-in flag. The flag is persisted even
// for users without an active window so it takes effect on the next deposit.
func (s *InvestmentServiceImpl) SetAutoCompound(ctx context.Context, userID uuid.UUID, enabled bool) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	record, err := s.lockOrCreateRecord(ctx, dbTx, userID)
	if err != nil {
		return err
	}

	record.AutoCompound = enabled
	record.UpdatedAt = s.now()
	if err := s.investRepo.Update(ctx, dbTx, record); err != nil {
		return apperror.InternalError(fmt.Errorf("update investment: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("user_id", userID.String()).Bool("enabled", enabled).Msg("auto-compound toggled")
	return nil
}

// SweepAutoCompound folds every elapsed whole day of interest into principal
// for each auto-compounding record: principal *= (1 + rate)^days, and the
// window start advances by exactly days * 86400 seconds so the partial day's
// accrual is preserved. Each record is swept in its own transaction; one
// failing user does not block the rest.
func (s *InvestmentServiceImpl) SweepAutoCompound(ctx context.Context) (int, error) {
	userIDs, err := s.investRepo.ListAutoCompoundUsers(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("list auto-compound users: %w", err))
	}

	swept := 0
	for _, userID := range userIDs {
		folded, err := s.sweepOne(ctx, userID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID.String()).Msg("sweep failed for user")
			continue
		}
		if folded {
			swept++
		}
	}
	return swept, nil
}

func (s *InvestmentServiceImpl) sweepOne(ctx context.Context, userID uuid.UUID) (bool, error) {
	folded := false
	err := s.withLockedRecord(ctx, userID, func(tx pgx.Tx, r *domain.InvestmentRecord) error {
		if !r.AutoCompound {
			return nil
		}
		days := r.WholeDaysElapsed(s.now())
		if days < 1 {
			return nil
		}

		growth := decimal.NewFromInt(1).Add(s.dailyRate).Pow(decimal.NewFromInt(days))
		r.Principal = domain.RoundAmount(domain.AssetUSD, r.Principal.Mul(growth))
		advanced := r.WindowStart.Add(time.Duration(days*domain.SecondsPerDay) * time.Second)
		r.WindowStart = &advanced
		r.UpdatedAt = s.now()
		folded = true

		s.log.Info().
			Str("user_id", userID.String()).
			Int64("days", days).
			Str("principal", r.Principal.String()).
			Msg("auto-compound swept")
		return nil
	})
	return folded, err
}

// withLockedRecord runs fn on the user's locked record inside a transaction
// and persists the mutation. Fails with NoActiveAccrual when the user has no
// open window.
func (s *InvestmentServiceImpl) withLockedRecord(ctx context.Context, userID uuid.UUID, fn func(tx pgx.Tx, r *domain.InvestmentRecord) error) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	record, err := s.investRepo.GetForUpdate(ctx, dbTx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock investment: %w", err))
	}
	if record == nil || !record.Active() {
		return apperror.ErrNoActiveAccrual()
	}

	if err := fn(dbTx, record); err != nil {
		return err
	}
	if err := s.investRepo.Update(ctx, dbTx, record); err != nil {
		return apperror.InternalError(fmt.Errorf("update investment: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// lockOrCreateRecord locks the user's record, inserting an empty one first
// when the user has never invested.
func (s *InvestmentServiceImpl) lockOrCreateRecord(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	record, err := s.investRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock investment: %w", err))
	}
	if record != nil {
		return record, nil
	}

	record = domain.NewInvestmentRecord(userID, s.now())
	if err := s.investRepo.Create(ctx, tx, record); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create investment: %w", err))
	}
	return record, nil
}
