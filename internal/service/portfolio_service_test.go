package service

import (
	"context"
	"testing"

	"crypto-invest-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPortfolioFixture(t *testing.T) (*PortfolioServiceImpl, *fakeWalletRepo) {
	t.Helper()

	walletRepo := newFakeWalletRepo()
	rateRepo := newFakeRateRepo()
	ctx := context.Background()
	require.NoError(t, rateRepo.Upsert(ctx, "USD-USD", decimal.NewFromInt(1)))
	require.NoError(t, rateRepo.Upsert(ctx, "BTC-USD", decimal.NewFromInt(64000)))

	oracle := NewFxOracle(rateRepo, newFakeRateCache(), nil, nil, zerolog.Nop())
	svc := NewPortfolioService(walletRepo, oracle, zerolog.Nop())
	return svc, walletRepo
}

func TestPortfolioService_ValuesAndShares(t *testing.T) {
	svc, walletRepo := newPortfolioFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	walletRepo.seed(userID, "USD", decimal.NewFromInt(3200))
	walletRepo.seed(userID, "BTC", decimal.RequireFromString("0.2"))

	total, entries, err := svc.GetPortfolio(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "16000", total.String())
	require.Len(t, entries, 2)

	byAsset := map[string]string{}
	for _, e := range entries {
		byAsset[e.Asset] = e.Percent.String()
	}
	assert.Equal(t, "20", byAsset["USD"])
	assert.Equal(t, "80", byAsset["BTC"])
}

func TestPortfolioService_SkipsEmptyWallets(t *testing.T) {
	svc, walletRepo := newPortfolioFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	walletRepo.seed(userID, "USD", decimal.NewFromInt(100))
	walletRepo.seed(userID, "BTC", decimal.Zero)

	total, entries, err := svc.GetPortfolio(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "100", total.String())
	assert.Len(t, entries, 1)
}

func TestPortfolioService_MissingRateFails(t *testing.T) {
	svc, walletRepo := newPortfolioFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	walletRepo.seed(userID, "DOGE", decimal.NewFromInt(100))

	_, _, err := svc.GetPortfolio(ctx, userID)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, "FX_002"))
}

func TestPortfolioService_EmptyPortfolio(t *testing.T) {
	svc, _ := newPortfolioFixture(t)

	total, entries, err := svc.GetPortfolio(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.Empty(t, entries)
}
