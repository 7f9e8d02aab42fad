package ledger_test

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

// memStore is an in-memory Repository. A unit of work holds the store lock
// and edits a private copy that only replaces the committed state on Commit.
type memStore struct {
	mu    sync.Mutex
	state memState
	// conflicts makes the next n balance writes fail with ErrConflict.
	conflicts int
}

type memState struct {
	accounts   map[uuid.UUID]ledger.Account
	categories map[uuid.UUID]ledger.Category
	cards      map[uuid.UUID]ledger.CreditCard
	goals      map[uuid.UUID]int64
	txs        map[uuid.UUID]*ledger.Transaction
	transfers  []ledger.Transfer
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		accounts:   map[uuid.UUID]ledger.Account{},
		categories: map[uuid.UUID]ledger.Category{},
		cards:      map[uuid.UUID]ledger.CreditCard{},
		goals:      map[uuid.UUID]int64{},
		txs:        map[uuid.UUID]*ledger.Transaction{},
	}}
}

func (s memState) clone() memState {
	txs := make(map[uuid.UUID]*ledger.Transaction, len(s.txs))
	for id, t := range s.txs {
		txs[id] = t.Clone()
	}

	return memState{
		accounts:   maps.Clone(s.accounts),
		categories: maps.Clone(s.categories),
		cards:      maps.Clone(s.cards),
		goals:      maps.Clone(s.goals),
		txs:        txs,
		transfers:  slices.Clone(s.transfers),
	}
}

func (m *memStore) addAccount(id uuid.UUID, balance int64) {
	m.state.accounts[id] = ledger.Account{ID: id, OwnerID: owner, Name: "acc", Type: ledger.AccountChecking, Balance: balance, IsActive: true}
}

func (m *memStore) addCategory(id uuid.UUID, typ ledger.Type) {
	m.state.categories[id] = ledger.Category{ID: id, OwnerID: owner, Name: "cat", Type: typ, IsActive: true}
}

func (m *memStore) addCard(id uuid.UUID) {
	m.state.cards[id] = ledger.CreditCard{ID: id, OwnerID: owner, Name: "card", Limit: 100000, ClosingDay: 5, DueDay: 15}
}

func (m *memStore) balance(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.accounts[id].Balance
}

func (m *memStore) goal(id uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.goals[id]
}

func (m *memStore) Begin(context.Context) (ledger.Tx, error) {
	m.mu.Lock()
	return &memTx{store: m, work: m.state.clone()}, nil
}

func (m *memStore) CreateAccount(_ context.Context, acc *ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc.ID = uuid.New()
	m.state.accounts[acc.ID] = *acc

	return nil
}

func (m *memStore) GetAccount(_ context.Context, own, id uuid.UUID) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.state.accounts[id]
	if !ok || acc.OwnerID != own {
		return nil, ledger.ErrNotFound
	}

	return &acc, nil
}

func (m *memStore) ListAccounts(_ context.Context, own uuid.UUID) ([]*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*ledger.Account

	for _, acc := range m.state.accounts {
		if acc.OwnerID == own {
			out = append(out, &acc)
		}
	}

	return out, nil
}

func (m *memStore) UpdateAccount(_ context.Context, acc *ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.state.accounts[acc.ID]
	if !ok {
		return ledger.ErrNotFound
	}

	if cur.Version != acc.Version {
		return ledger.ErrConflict
	}

	cur.Name, cur.Type, cur.IsActive = acc.Name, acc.Type, acc.IsActive
	cur.Version++
	m.state.accounts[acc.ID] = cur
	*acc = cur

	return nil
}

func (m *memStore) DeleteAccount(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.state.txs {
		if t.AccountID != nil && *t.AccountID == id {
			return ledger.ErrConflict
		}
	}

	delete(m.state.accounts, id)

	return nil
}

func (m *memStore) GetTransaction(_ context.Context, own, id uuid.UUID) (*ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.state.txs[id]
	if !ok || t.OwnerID != own {
		return nil, ledger.ErrNotFound
	}

	return t.Clone(), nil
}

func (m *memStore) ListTransactions(_ context.Context, own uuid.UUID, _ ledger.ListFilter) ([]*ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*ledger.Transaction

	for _, t := range m.state.txs {
		if t.OwnerID == own {
			out = append(out, t.Clone())
		}
	}

	return out, nil
}

type memTx struct {
	store *memStore
	work  memState
	done  bool
}

func (tx *memTx) LockAccounts(_ context.Context, own uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*ledger.Account, error) {
	out := make(map[uuid.UUID]*ledger.Account, len(ids))

	for _, id := range ids {
		if acc, ok := tx.work.accounts[id]; ok && acc.OwnerID == own {
			out[id] = &acc
		}
	}

	return out, nil
}

func (tx *memTx) AdjustBalance(_ context.Context, acc *ledger.Account, delta int64) error {
	if tx.store.conflicts > 0 {
		tx.store.conflicts--
		return ledger.ErrConflict
	}

	cur := tx.work.accounts[acc.ID]
	if cur.Version != acc.Version {
		return ledger.ErrConflict
	}

	cur.Balance += delta
	cur.Version++
	tx.work.accounts[acc.ID] = cur
	*acc = cur

	return nil
}

func (tx *memTx) AdjustGoal(_ context.Context, _, id uuid.UUID, delta int64) error {
	cur, ok := tx.work.goals[id]
	if !ok {
		return ledger.ErrNotFound
	}

	tx.work.goals[id] = max(cur+delta, 0)

	return nil
}

func (tx *memTx) GetCategory(_ context.Context, own, id uuid.UUID) (*ledger.Category, error) {
	c, ok := tx.work.categories[id]
	if !ok || c.OwnerID != own {
		return nil, ledger.ErrNotFound
	}

	return &c, nil
}

func (tx *memTx) GetCreditCard(_ context.Context, own, id uuid.UUID) (*ledger.CreditCard, error) {
	c, ok := tx.work.cards[id]
	if !ok || c.OwnerID != own {
		return nil, ledger.ErrNotFound
	}

	return &c, nil
}

func (tx *memTx) GetTransactionForUpdate(_ context.Context, own, id uuid.UUID) (*ledger.Transaction, error) {
	t, ok := tx.work.txs[id]
	if !ok || t.OwnerID != own {
		return nil, ledger.ErrNotFound
	}

	return t.Clone(), nil
}

func (tx *memTx) InsertTransaction(_ context.Context, t *ledger.Transaction) error {
	t.ID = uuid.New()
	tx.work.txs[t.ID] = t.Clone()

	return nil
}

func (tx *memTx) UpdateTransaction(_ context.Context, t *ledger.Transaction) error {
	if _, ok := tx.work.txs[t.ID]; !ok {
		return ledger.ErrNotFound
	}

	tx.work.txs[t.ID] = t.Clone()

	return nil
}

func (tx *memTx) DeleteTransaction(_ context.Context, _, id uuid.UUID) error {
	delete(tx.work.txs, id)
	return nil
}

func (tx *memTx) InsertTransfer(_ context.Context, tr *ledger.Transfer) error {
	tr.ID = uuid.New()
	tx.work.transfers = append(tx.work.transfers, *tr)

	return nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return nil
	}

	tx.store.state = tx.work
	tx.done = true
	tx.store.mu.Unlock()

	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}

	tx.done = true
	tx.store.mu.Unlock()

	return nil
}
