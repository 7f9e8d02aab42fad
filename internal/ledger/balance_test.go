package ledger_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

var cardID = uuid.MustParse("00000000-0000-0000-0000-000000000020")

func newLedger(t *testing.T) (*ledger.Service, *memStore) {
	t.Helper()

	store := newMemStore()
	store.addAccount(checkingID, 100000)
	store.addAccount(savingsID, 0)
	store.addCategory(groceryID, ledger.TypeExpense)
	store.addCategory(salaryID, ledger.TypeIncome)
	store.addCard(cardID)

	return ledger.NewService(store), store
}

func TestBalance_CreateUpdateDelete(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	tr, err := svc.CreateTransaction(ctx, owner, expenseParams(15000))
	require.NoError(t, err)
	assert.Equal(t, int64(85000), store.balance(checkingID))

	_, err = svc.UpdateTransaction(ctx, owner, tr.ID, ledger.UpdateParams{Amount: new(int64(20000))})
	require.NoError(t, err)
	assert.Equal(t, int64(80000), store.balance(checkingID))

	require.NoError(t, svc.DeleteTransaction(ctx, owner, tr.ID))
	assert.Equal(t, int64(100000), store.balance(checkingID))

	err = svc.DeleteTransaction(ctx, owner, tr.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Equal(t, int64(100000), store.balance(checkingID))
}

func TestBalance_UpdateMovesBetweenAccounts(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	tr, err := svc.CreateTransaction(ctx, owner, expenseParams(5000))
	require.NoError(t, err)

	_, err = svc.UpdateTransaction(ctx, owner, tr.ID, ledger.UpdateParams{
		AccountID: ledger.Ref{Set: true, ID: new(savingsID)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), store.balance(checkingID))
	assert.Equal(t, int64(-5000), store.balance(savingsID))

	// Flipping to income needs a matching category in the same update.
	_, err = svc.UpdateTransaction(ctx, owner, tr.ID, ledger.UpdateParams{Type: new(ledger.TypeIncome)})
	require.True(t, ledger.IsValidation(err))
	assert.Equal(t, int64(-5000), store.balance(savingsID))

	_, err = svc.UpdateTransaction(ctx, owner, tr.ID, ledger.UpdateParams{
		Type:       new(ledger.TypeIncome),
		CategoryID: new(salaryID),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), store.balance(savingsID))
}

func TestBalance_CardChargesLeaveAccountsAlone(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	p := expenseParams(7000)
	p.AccountID = nil
	p.CreditCardID = new(cardID)

	tr, err := svc.CreateTransaction(ctx, owner, p)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), store.balance(checkingID))

	// Moving the charge from the card to the account debits it once.
	_, err = svc.UpdateTransaction(ctx, owner, tr.ID, ledger.UpdateParams{
		CreditCardID: ledger.Ref{Set: true},
		AccountID:    ledger.Ref{Set: true, ID: new(checkingID)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(93000), store.balance(checkingID))
}

func TestBalance_Duplicate(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	p := expenseParams(2500)
	p.IsPaid = true
	p.Installments = new(10)
	p.CurrentInstallment = new(2)

	src, err := svc.CreateTransaction(ctx, owner, p)
	require.NoError(t, err)

	dup, err := svc.DuplicateTransaction(ctx, owner, src.ID)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.False(t, dup.IsPaid)
	assert.Equal(t, src.Description, dup.Description)
	assert.Equal(t, src.Amount, dup.Amount)
	assert.Equal(t, src.Type, dup.Type)
	assert.Equal(t, src.Date, dup.Date)
	assert.Equal(t, src.CategoryID, dup.CategoryID)
	assert.Equal(t, src.AccountID, dup.AccountID)
	assert.Equal(t, src.Installments, dup.Installments)
	assert.Equal(t, src.CurrentInstallment, dup.CurrentInstallment)

	assert.Equal(t, int64(95000), store.balance(checkingID))

	stored, err := svc.GetTransaction(ctx, owner, src.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
}

func TestBalance_GoalContribution(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	goalID := uuid.New()
	store.state.goals[goalID] = 1000

	tr, err := svc.CreateTransaction(ctx, owner, ledger.CreateParams{
		Description: "Bonus",
		Amount:      4000,
		Type:        ledger.TypeIncome,
		Date:        time.Now(),
		CategoryID:  salaryID,
		AccountID:   new(checkingID),
		GoalID:      new(goalID),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), store.goal(goalID))
	assert.Equal(t, int64(104000), store.balance(checkingID))

	_, err = svc.UpdateTransaction(ctx, owner, tr.ID, ledger.UpdateParams{Amount: new(int64(3000))})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), store.goal(goalID))

	require.NoError(t, svc.DeleteTransaction(ctx, owner, tr.ID))
	assert.Equal(t, int64(1000), store.goal(goalID))

	_, err = svc.CreateTransaction(ctx, owner, ledger.CreateParams{
		Description: "Bonus",
		Amount:      4000,
		Type:        ledger.TypeIncome,
		Date:        time.Now(),
		CategoryID:  salaryID,
		AccountID:   new(checkingID),
		GoalID:      new(uuid.New()),
	})

	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "goalId", ve.Field)
	assert.Equal(t, int64(100000), store.balance(checkingID))
}

func TestBalance_GoalReversalClampsAtZero(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	goalID := uuid.New()
	store.state.goals[goalID] = 1000

	tr, err := svc.CreateTransaction(ctx, owner, ledger.CreateParams{
		Description: "Bonus",
		Amount:      4000,
		Type:        ledger.TypeIncome,
		Date:        time.Now(),
		CategoryID:  salaryID,
		AccountID:   new(checkingID),
		GoalID:      new(goalID),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), store.goal(goalID))

	// Lowered by hand below what the transaction contributed.
	store.state.goals[goalID] = 1500

	require.NoError(t, svc.DeleteTransaction(ctx, owner, tr.ID))
	assert.Equal(t, int64(0), store.goal(goalID))
	assert.Equal(t, int64(100000), store.balance(checkingID))
}

func TestBalance_Reconciliation(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	accounts := []uuid.UUID{checkingID, savingsID}
	opening := map[uuid.UUID]int64{checkingID: 100000, savingsID: 0}

	var live []uuid.UUID

	for range 300 {
		switch op := rng.IntN(10); {
		case op < 5 || len(live) == 0:
			p := expenseParams(rng.Int64N(10000) + 1)
			p.AccountID = new(accounts[rng.IntN(2)])

			if rng.IntN(2) == 0 {
				p.Type = ledger.TypeIncome
				p.CategoryID = salaryID
			}

			tr, err := svc.CreateTransaction(ctx, owner, p)
			require.NoError(t, err)

			live = append(live, tr.ID)
		case op < 8:
			id := live[rng.IntN(len(live))]
			_, err := svc.UpdateTransaction(ctx, owner, id, ledger.UpdateParams{
				Amount:    new(rng.Int64N(10000) + 1),
				AccountID: ledger.Ref{Set: true, ID: new(accounts[rng.IntN(2)])},
			})
			require.NoError(t, err)
		default:
			i := rng.IntN(len(live))
			require.NoError(t, svc.DeleteTransaction(ctx, owner, live[i]))

			live = append(live[:i], live[i+1:]...)
		}
	}

	txs, err := svc.ListTransactions(ctx, owner, ledger.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, len(live))

	want := map[uuid.UUID]int64{}
	for id, v := range opening {
		want[id] = v
	}

	for _, tr := range txs {
		if tr.Type == ledger.TypeIncome {
			want[*tr.AccountID] += tr.Amount
		} else {
			want[*tr.AccountID] -= tr.Amount
		}
	}

	for _, id := range accounts {
		assert.Equal(t, want[id], store.balance(id))
	}
}

func TestTransfer(t *testing.T) {
	t.Run("Conserves total", func(t *testing.T) {
		svc, store := newLedger(t)

		res, err := svc.Transfer(context.Background(), owner, ledger.TransferParams{
			FromAccountID: checkingID,
			ToAccountID:   savingsID,
			Amount:        30000,
			Description:   "Rainy day",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(70000), res.From.Balance)
		assert.Equal(t, int64(30000), res.To.Balance)
		assert.Equal(t, int64(70000), store.balance(checkingID))
		assert.Equal(t, int64(30000), store.balance(savingsID))
		assert.Equal(t, int64(100000), store.balance(checkingID)+store.balance(savingsID))
		assert.Len(t, store.state.transfers, 1)
	})

	t.Run("Insufficient balance changes nothing", func(t *testing.T) {
		svc, store := newLedger(t)

		_, err := svc.Transfer(context.Background(), owner, ledger.TransferParams{
			FromAccountID: checkingID,
			ToAccountID:   savingsID,
			Amount:        100001,
		})
		require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

		assert.Equal(t, int64(100000), store.balance(checkingID))
		assert.Equal(t, int64(0), store.balance(savingsID))
		assert.Empty(t, store.state.transfers)
	})

	t.Run("Exact balance is allowed", func(t *testing.T) {
		svc, store := newLedger(t)

		_, err := svc.Transfer(context.Background(), owner, ledger.TransferParams{
			FromAccountID: checkingID,
			ToAccountID:   savingsID,
			Amount:        100000,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), store.balance(checkingID))
	})

	t.Run("Unknown account", func(t *testing.T) {
		svc, store := newLedger(t)

		_, err := svc.Transfer(context.Background(), owner, ledger.TransferParams{
			FromAccountID: checkingID,
			ToAccountID:   uuid.New(),
			Amount:        100,
		})
		require.ErrorIs(t, err, ledger.ErrNotFound)
		assert.Equal(t, int64(100000), store.balance(checkingID))
	})
}

func TestConcurrentWritesToOneAccount(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup

	for range 50 {
		wg.Go(func() {
			_, err := svc.CreateTransaction(ctx, owner, expenseParams(100))
			assert.NoError(t, err)
		})
		wg.Go(func() {
			_, err := svc.Transfer(ctx, owner, ledger.TransferParams{
				FromAccountID: checkingID,
				ToAccountID:   savingsID,
				Amount:        100,
			})
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	assert.Equal(t, int64(100000-50*100-50*100), store.balance(checkingID))
	assert.Equal(t, int64(5000), store.balance(savingsID))
}

func TestImportBatch_AllOrNothing(t *testing.T) {
	svc, store := newLedger(t)
	ctx := context.Background()

	good := expenseParams(1000)
	bad := expenseParams(1000)
	bad.CategoryID = uuid.New()

	_, err := svc.ImportBatch(ctx, owner, []ledger.CreateParams{good, good, bad})
	require.True(t, ledger.IsValidation(err))
	assert.Equal(t, int64(100000), store.balance(checkingID))

	txs, err := svc.ListTransactions(ctx, owner, ledger.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)

	created, err := svc.ImportBatch(ctx, owner, []ledger.CreateParams{good, good})
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, int64(98000), store.balance(checkingID))
}

func TestConflictRetry(t *testing.T) {
	t.Run("Recovers", func(t *testing.T) {
		svc, store := newLedger(t)
		store.conflicts = 2

		_, err := svc.CreateTransaction(context.Background(), owner, expenseParams(500))
		require.NoError(t, err)
		assert.Equal(t, int64(99500), store.balance(checkingID))
	})

	t.Run("Gives up", func(t *testing.T) {
		svc, store := newLedger(t)
		store.conflicts = 3

		_, err := svc.CreateTransaction(context.Background(), owner, expenseParams(500))
		require.ErrorIs(t, err, ledger.ErrConflict)
		assert.Equal(t, int64(100000), store.balance(checkingID))
	})
}

func TestDeleteAccount_InUse(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, owner, expenseParams(500))
	require.NoError(t, err)

	err = svc.DeleteAccount(ctx, owner, checkingID)
	assert.ErrorIs(t, err, ledger.ErrConflict)
}
