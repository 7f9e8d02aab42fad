package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
)

func TestService_WriteCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	txs := NewMockTransactionLister(ctrl)
	cats := NewMockCategoryLister(ctrl)
	cards := NewMockCardLister(ctrl)

	owner := uuid.New()
	accountID := uuid.New()
	cardID := uuid.New()
	foodID := uuid.New()
	date := time.Date(2023, 10, 27, 0, 0, 0, 0, time.UTC)
	expense := ledger.TypeExpense
	filter := query.TransactionFilter{Type: &expense, Search: new("i")}

	txs.EXPECT().ListTransactions(gomock.Any(), owner, ledger.ListFilter{Type: &expense}).Return([]*ledger.Transaction{
		{
			ID:          uuid.New(),
			Description: "Hosting",
			Amount:      1250,
			Type:        ledger.TypeExpense,
			Date:        date,
			IsPaid:      true,
			CategoryID:  foodID,
			AccountID:   &accountID,
		},
		{
			ID:                 uuid.New(),
			Description:        "=HYPERLINK(\"http://evil\")",
			Amount:             500,
			Type:               ledger.TypeExpense,
			Date:               date,
			CategoryID:         foodID,
			CreditCardID:       &cardID,
			Installments:       new(12),
			CurrentInstallment: new(2),
		},
		{
			ID:          uuid.New(),
			Description: "Rent",
			Amount:      80000,
			Type:        ledger.TypeExpense,
			Date:        date,
			CategoryID:  foodID,
			AccountID:   &accountID,
		},
	}, nil)
	txs.EXPECT().ListAccounts(gomock.Any(), owner).Return([]*ledger.Account{{ID: accountID, Name: "Main"}}, nil)
	cats.EXPECT().ListCategories(gomock.Any(), owner).Return([]*ledger.Category{{ID: foodID, Name: "Food"}}, nil)
	cards.EXPECT().List(gomock.Any(), owner).Return([]*ledger.CreditCard{{ID: cardID, Name: "Visa"}}, nil)

	var buf bytes.Buffer

	n, err := NewService(txs, cats, cards).WriteCSV(context.Background(), owner, filter, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"2023-10-27", "Hosting", "EXPENSE", "12.50", "true", "Food", "Main", "", ""}, rows[1])
	assert.Equal(t, []string{"2023-10-27", "'=HYPERLINK(\"http://evil\")", "EXPENSE", "5.00", "false", "Food", "", "Visa", "2/12"}, rows[2])
}

func TestService_WriteCSV_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	txs := NewMockTransactionLister(ctrl)
	cats := NewMockCategoryLister(ctrl)
	cards := NewMockCardLister(ctrl)

	boom := errors.New("db down")

	txs.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)
	txs.EXPECT().ListAccounts(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	cats.EXPECT().ListCategories(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	cards.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	var buf bytes.Buffer

	_, err := NewService(txs, cats, cards).WriteCSV(context.Background(), uuid.New(), query.TransactionFilter{}, &buf)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, buf.Len())
}

func TestEscapeFormula(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Coffee", want: "Coffee"},
		{in: "", want: ""},
		{in: "=1+1", want: "'=1+1"},
		{in: "+351 912", want: "'+351 912"},
		{in: "-5", want: "'-5"},
		{in: "@SUM(A1)", want: "'@SUM(A1)"},
		{in: "  =cmd", want: "'  =cmd"},
		{in: "a=b", want: "a=b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeFormula(tt.in))
		})
	}
}
