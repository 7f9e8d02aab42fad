package ledger

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// accountEffect is the signed change t makes to its account balance. Card
// charges touch no account.
func accountEffect(t *Transaction) (uuid.UUID, int64, bool) {
	if t == nil || t.AccountID == nil {
		return uuid.Nil, 0, false
	}

	if t.Type == TypeIncome {
		return *t.AccountID, t.Amount, true
	}

	return *t.AccountID, -t.Amount, true
}

// goalEffect is the contribution a linked income makes to its goal.
func goalEffect(t *Transaction) (uuid.UUID, int64, bool) {
	if t == nil || t.GoalID == nil || t.Type != TypeIncome {
		return uuid.Nil, 0, false
	}

	return *t.GoalID, t.Amount, true
}

// deltas returns the net balance changes that move the ledger from old to
// next. Either side may be nil.
func deltas(old, next *Transaction) (accounts, goals map[uuid.UUID]int64) {
	accounts = make(map[uuid.UUID]int64)
	goals = make(map[uuid.UUID]int64)

	if id, v, ok := accountEffect(old); ok {
		accounts[id] -= v
	}

	if id, v, ok := accountEffect(next); ok {
		accounts[id] += v
	}

	if id, v, ok := goalEffect(old); ok {
		goals[id] -= v
	}

	if id, v, ok := goalEffect(next); ok {
		goals[id] += v
	}

	for id, v := range accounts {
		if v == 0 {
			delete(accounts, id)
		}
	}

	for id, v := range goals {
		if v == 0 {
			delete(goals, id)
		}
	}

	return accounts, goals
}

// accountRefs lists every account either version points at.
func accountRefs(ts ...*Transaction) []uuid.UUID {
	var ids []uuid.UUID

	for _, t := range ts {
		if t != nil && t.AccountID != nil {
			ids = append(ids, *t.AccountID)
		}
	}

	return sortedIDs(ids)
}

// sortedIDs sorts and dedupes ids. Rows are always locked in this order.
func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})

	return slices.Compact(out)
}

func keys(m map[uuid.UUID]int64) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	return sortedIDs(ids)
}
