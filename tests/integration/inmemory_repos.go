package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-invest-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) UpdateConvertToUSD(ctx context.Context, id uuid.UUID, convert bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.ConvertToUSD = convert
	return nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func walletKey(userID uuid.UUID, asset string) string {
	return userID.String() + "|" + asset
}

func (r *inMemoryWalletRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[walletKey(userID, asset)]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *wallet
	r.wallets[walletKey(wallet.UserID, wallet.Asset)] = &cp
	return nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID, asset string, available, frozen decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletKey(userID, asset)]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Available = available
	w.Frozen = frozen
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryWalletRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

// --- In-Memory Rate Repo ---

type inMemoryRateRepo struct {
	mu    sync.RWMutex
	rates map[string]domain.FXRate
}

func newInMemoryRateRepo() *inMemoryRateRepo {
	return &inMemoryRateRepo{rates: make(map[string]domain.FXRate)}
}

func (r *inMemoryRateRepo) Get(ctx context.Context, pair string) (*domain.FXRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fx, ok := r.rates[pair]
	if !ok {
		return nil, nil
	}
	return &fx, nil
}

func (r *inMemoryRateRepo) Upsert(ctx context.Context, pair string, rate decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[pair] = domain.FXRate{Pair: pair, Rate: rate, UpdatedAt: time.Now().UTC()}
	return nil
}

func (r *inMemoryRateRepo) List(ctx context.Context) ([]domain.FXRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.FXRate
	for _, fx := range r.rates {
		out = append(out, fx)
	}
	return out, nil
}

// --- In-Memory Rate Cache ---

type inMemoryRateCache struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

func newInMemoryRateCache() *inMemoryRateCache {
	return &inMemoryRateCache{rates: make(map[string]decimal.Decimal)}
}

func (c *inMemoryRateCache) Get(ctx context.Context, pair string) (*decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[pair]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (c *inMemoryRateCache) Set(ctx context.Context, pair string, rate decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[pair] = rate
	return nil
}

// --- In-Memory Payout Repo ---

type inMemoryPayoutRepo struct {
	mu      sync.RWMutex
	payouts []domain.Payout
}

func newInMemoryPayoutRepo() *inMemoryPayoutRepo {
	return &inMemoryPayoutRepo{}
}

func (r *inMemoryPayoutRepo) Create(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payouts = append(r.payouts, *payout)
	return nil
}

func (r *inMemoryPayoutRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Payout
	for i := len(r.payouts) - 1; i >= 0; i-- {
		if r.payouts[i].UserID == userID {
			out = append(out, r.payouts[i])
		}
	}
	return out, nil
}

// --- In-Memory Investment Repo ---

type inMemoryInvestRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.InvestmentRecord
}

func newInMemoryInvestRepo() *inMemoryInvestRepo {
	return &inMemoryInvestRepo{records: make(map[uuid.UUID]*domain.InvestmentRecord)}
}

func (r *inMemoryInvestRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	return r.Get(ctx, userID)
}

func (r *inMemoryInvestRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.InvestmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
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

func (r *inMemoryInvestRepo) Create(ctx context.Context, tx pgx.Tx, record *domain.InvestmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *record
	r.records[record.UserID] = &cp
	return nil
}

func (r *inMemoryInvestRepo) Update(ctx context.Context, tx pgx.Tx, record *domain.InvestmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.UserID]; !ok {
		return fmt.Errorf("investment not found")
	}
	cp := *record
	r.records[record.UserID] = &cp
	return nil
}

func (r *inMemoryInvestRepo) ListAutoCompoundUsers(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []uuid.UUID
	for id, rec := range r.records {
		if rec.AutoCompound && rec.WindowStart != nil && rec.Principal.IsPositive() {
			out = append(out, id)
		}
	}
	return out, nil
}

// --- Serializing Transactor ---

// inMemoryTransactor serializes transactions with a global mutex, standing
// in for the row locks SELECT FOR UPDATE takes in PostgreSQL. Begin blocks
// until the previous transaction commits or rolls back, so read-modify-write
// cycles inside a transaction are atomic under concurrency.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: &t.mu}, nil
}

// lockedTx holds the transactor mutex until Commit or Rollback. Rollback
// after Commit is a no-op, matching the usual defer tx.Rollback pattern.
type lockedTx struct {
	noopTx
	release *sync.Mutex
	done    bool
	mu      sync.Mutex
}

func (t *lockedTx) Commit(ctx context.Context) error {
	t.finish()
	return nil
}

func (t *lockedTx) Rollback(ctx context.Context) error {
	t.finish()
	return nil
}

func (t *lockedTx) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
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
