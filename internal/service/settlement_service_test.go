package service

import (
	"context"
	"testing"

	"crypto-invest-wallet/internal/core/domain"
	"crypto-invest-wallet/internal/core/ports/mocks"
	"crypto-invest-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type settlementFixture struct {
	svc        *SettlementServiceImpl
	walletRepo *fakeWalletRepo
	payoutRepo *fakePayoutRepo
	userRepo   *mocks.MockUserRepository
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	walletRepo := newFakeWalletRepo()
	payoutRepo := newFakePayoutRepo()
	rateRepo := newFakeRateRepo()
	ctx := context.Background()
	require.NoError(t, rateRepo.Upsert(ctx, "USD-USD", decimal.NewFromInt(1)))
	require.NoError(t, rateRepo.Upsert(ctx, "TRX-USD", decimal.RequireFromString("0.12")))

	oracle := NewFxOracle(rateRepo, newFakeRateCache(), nil, nil, zerolog.Nop())
	ledger := NewLedgerService(walletRepo, &fakeTransactor{}, zerolog.Nop())
	svc := NewSettlementService(userRepo, payoutRepo, ledger, oracle, &fakeTransactor{}, zerolog.Nop())
	return &settlementFixture{svc: svc, walletRepo: walletRepo, payoutRepo: payoutRepo, userRepo: userRepo}
}

func TestSettlementService_NativeCredit(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID, ConvertToUSD: false}, nil)

	payout, err := f.svc.Settle(ctx, userID, "plan-30d", decimal.NewFromInt(500), "TRX")
	require.NoError(t, err)
	assert.False(t, payout.Converted)
	assert.Nil(t, payout.Rate)
	assert.Nil(t, payout.USDAmount)
	assert.Equal(t, "TRX", payout.Currency)

	assert.True(t, f.walletRepo.balance(userID, "TRX").Equal(decimal.NewFromInt(500)))
	assert.True(t, f.walletRepo.balance(userID, "USD").IsZero())
}

func TestSettlementService_ConvertedCredit(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID, ConvertToUSD: true}, nil)

	payout, err := f.svc.Settle(ctx, userID, "plan-30d", decimal.NewFromInt(500), "TRX")
	require.NoError(t, err)
	assert.True(t, payout.Converted)
	require.NotNil(t, payout.Rate)
	require.NotNil(t, payout.USDAmount)
	assert.Equal(t, "60", payout.USDAmount.String())

	// Credit lands in USD, not in the native currency.
	assert.True(t, f.walletRepo.balance(userID, "USD").Equal(decimal.NewFromInt(60)))
	assert.True(t, f.walletRepo.balance(userID, "TRX").IsZero())
}

func TestSettlementService_USDPayoutNeverConverts(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID, ConvertToUSD: true}, nil)

	payout, err := f.svc.Settle(ctx, userID, "plan-7d", decimal.NewFromInt(25), "USD")
	require.NoError(t, err)
	assert.False(t, payout.Converted)
	assert.True(t, f.walletRepo.balance(userID, "USD").Equal(decimal.NewFromInt(25)))
}

func TestSettlementService_MissingRateFailsConversion(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID, ConvertToUSD: true}, nil)

	_, err := f.svc.Settle(ctx, userID, "plan-30d", decimal.NewFromInt(10), "DOGE")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, "FX_002"))

	// Nothing was credited or recorded.
	assert.True(t, f.walletRepo.balance(userID, "DOGE").IsZero())
	history, err := f.svc.PayoutHistory(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSettlementService_UnknownUser(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.userRepo.EXPECT().GetByID(ctx, userID).Return(nil, nil)

	_, err := f.svc.Settle(ctx, userID, "plan-30d", decimal.NewFromInt(10), "USD")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, "WAL_003"))
}

func TestSettlementService_HistoryIsNewestFirst(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID}, nil).Times(2)

	_, err := f.svc.Settle(ctx, userID, "plan-7d", decimal.NewFromInt(10), "USD")
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, userID, "plan-30d", decimal.NewFromInt(20), "USD")
	require.NoError(t, err)

	history, err := f.svc.PayoutHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "plan-30d", history[0].PlanID)
	assert.Equal(t, "plan-7d", history[1].PlanID)
}
