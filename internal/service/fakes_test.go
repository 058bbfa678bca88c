package service

import (
	"context"
	"fmt"
	"sync"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-memory wallet repo ---

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]*domain.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func walletKey(userID uuid.UUID, asset string) string {
	return userID.String() + "|" + asset
}

func (r *fakeWalletRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletKey(userID, asset)]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWalletRepo) Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *wallet
	r.wallets[walletKey(wallet.UserID, wallet.Asset)] = &cp
	return nil
}

func (r *fakeWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, available, frozen decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletKey(userID, asset)]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Available = available
	w.Frozen = frozen
	return nil
}

func (r *fakeWalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

// balance is a test helper reading a wallet's available balance directly.
func (r *fakeWalletRepo) balance(userID uuid.UUID, asset string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletKey(userID, asset)]
	if !ok {
		return decimal.Zero
	}
	return w.Available
}

func (r *fakeWalletRepo) seed(userID uuid.UUID, asset string, available decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[walletKey(userID, asset)] = &domain.Wallet{
		UserID:    userID,
		Asset:     asset,
		Available: available,
		Frozen:    decimal.Zero,
	}
}

// --- In-memory rate repo ---

type fakeRateRepo struct {
	mu    sync.Mutex
	rates map[string]domain.FXRate
}

func newFakeRateRepo() *fakeRateRepo {
	return &fakeRateRepo{rates: make(map[string]domain.FXRate)}
}

func (r *fakeRateRepo) Get(ctx context.Context, pair string) (*domain.FXRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fx, ok := r.rates[pair]
	if !ok {
		return nil, nil
	}
	return &fx, nil
}

func (r *fakeRateRepo) Upsert(ctx context.Context, pair string, rate decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[pair] = domain.FXRate{Pair: pair, Rate: rate, UpdatedAt: nowUTC()}
	return nil
}

func (r *fakeRateRepo) List(ctx context.Context) ([]domain.FXRate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FXRate
	for _, fx := range r.rates {
		out = append(out, fx)
	}
	return out, nil
}

// --- In-memory rate cache ---

type fakeRateCache struct {
	mu    sync.Mutex
	rates map[string]decimal.Decimal
}

func newFakeRateCache() *fakeRateCache {
	return &fakeRateCache{rates: make(map[string]decimal.Decimal)}
}

func (c *fakeRateCache) Get(ctx context.Context, pair string) (*decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rate, ok := c.rates[pair]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (c *fakeRateCache) Set(ctx context.Context, pair string, rate decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[pair] = rate
	return nil
}

// --- In-memory payout repo ---

type fakePayoutRepo struct {
	mu      sync.Mutex
	payouts []domain.Payout
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{}
}

func (r *fakePayoutRepo) Create(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payouts = append(r.payouts, *payout)
	return nil
}

func (r *fakePayoutRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payout
	for i := len(r.payouts) - 1; i >= 0; i-- {
		if r.payouts[i].UserID == userID {
			out = append(out, r.payouts[i])
		}
	}
	return out, nil
}

// --- In-memory investment repo ---

type fakeInvestRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.InvestmentRecord
}

func newFakeInvestRepo() *fakeInvestRepo {
	return &fakeInvestRepo{records: make(map[uuid.UUID]*domain.InvestmentRecord)}
}

func (r *fakeInvestRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	return r.Get(ctx, userID)
}

func (r *fakeInvestRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	if rec.WindowStart != nil {
		ws := *rec.WindowStart
		cp.WindowStart = &ws
	}
	return &cp, nil
}

func (r *fakeInvestRepo) Create(ctx context.Context, tx pgx.Tx, record *domain.InvestmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *record
	r.records[record.UserID] = &cp
	return nil
}

func (r *fakeInvestRepo) Update(ctx context.Context, tx pgx.Tx, record *domain.InvestmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.UserID]; !ok {
		return fmt.Errorf("investment not found")
	}
	cp := *record
	r.records[record.UserID] = &cp
	return nil
}

func (r *fakeInvestRepo) ListAutoCompoundUsers(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for id, rec := range r.records {
		if rec.AutoCompound && rec.WindowStart != nil && rec.Principal.IsPositive() {
			out = append(out, id)
		}
	}
	return out, nil
}

// --- No-op transactor ---

type fakeTransactor struct{}

func (t *fakeTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
