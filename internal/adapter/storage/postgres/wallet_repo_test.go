package postgres

import (
	"context"
	"testing"
	"time"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(userID uuid.UUID, asset string) *domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Wallet{
		UserID:    userID,
		Asset:     asset,
		Available: decimal.RequireFromString("100.50"),
		Frozen:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func walletColumns() []string {
	return []string{"user_id", "asset", "available", "frozen", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumns()).AddRow(
		w.UserID, w.Asset, w.Available, w.Frozen, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New(), "USDT")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ FOR UPDATE").
		WithArgs(w.UserID, "USDT").
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetForUpdate(context.Background(), tx, w.UserID, "USDT")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.UserID, result.UserID)
	assert.True(t, w.Available.Equal(result.Available))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetForUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ FOR UPDATE").
		WithArgs(userID, "BTC").
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetForUpdate(context.Background(), tx, userID, "BTC")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New(), "BTC")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.UserID, w.Asset, w.Available, w.Frozen, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()
	available := decimal.RequireFromString("42.00")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET available").
		WithArgs(available, decimal.Zero, userID, "USD").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, userID, "USD", available, decimal.Zero)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET available").
		WithArgs(decimal.Zero, decimal.Zero, userID, "USD").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, userID, "USD", decimal.Zero, decimal.Zero)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()
	w1 := newTestWallet(userID, "BTC")
	w2 := newTestWallet(userID, "USDT")

	rows := pgxmock.NewRows(walletColumns()).
		AddRow(w1.UserID, w1.Asset, w1.Available, w1.Frozen, w1.CreatedAt, w1.UpdatedAt).
		AddRow(w2.UserID, w2.Asset, w2.Available, w2.Frozen, w2.CreatedAt, w2.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id .+ ORDER BY asset").
		WithArgs(userID).
		WillReturnRows(rows)

	result, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "BTC", result[0].Asset)
	assert.Equal(t, "USDT", result[1].Asset)
	assert.NoError(t, mock.ExpectationsWereMet())
}
