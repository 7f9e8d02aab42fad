package category_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pennywise/internal/category"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
)

func TestService_Suggest(t *testing.T) {
	owner := uuid.New()
	food := uuid.New()

	tests := []struct {
		name        string
		description string
		setupMock   func(m *category.MockRepository)
		want        uuid.UUID
	}{
		{
			name:        "Match",
			description: "COMPRA CONTINENTE LISBOA",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().FindRule(gomock.Any(), owner, "COMPRA CONTINENTE LISBOA", ledger.TypeExpense).Return(food, nil)
			},
			want: food,
		},
		{
			name:        "NoMatch",
			description: "UNKNOWN",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().FindRule(gomock.Any(), owner, "UNKNOWN", ledger.TypeExpense).Return(uuid.Nil, nil)
			},
			want: uuid.Nil,
		},
		{
			name:        "BlankDescription",
			description: "   ",
			setupMock:   func(*category.MockRepository) {},
			want:        uuid.Nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := category.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := category.NewService(repo, nil).Suggest(context.Background(), owner, tt.description, ledger.TypeExpense)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Learn(t *testing.T) {
	owner := uuid.New()
	food := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)
		repo.EXPECT().GetCategory(gomock.Any(), owner, food).Return(&ledger.Category{ID: food}, nil)
		repo.EXPECT().CreateRule(gomock.Any(), owner, "CONTINENTE", food).Return(nil)

		require.NoError(t, category.NewService(repo, nil).Learn(context.Background(), owner, " CONTINENTE ", food))
	})

	t.Run("ShortPattern", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		err := category.NewService(category.NewMockRepository(ctrl), nil).Learn(context.Background(), owner, "ab", food)
		assert.True(t, ledger.IsValidation(err))
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := category.NewMockRepository(ctrl)
		repo.EXPECT().GetCategory(gomock.Any(), owner, food).Return(nil, ledger.ErrNotFound)

		err := category.NewService(repo, nil).Learn(context.Background(), owner, "CONTINENTE", food)
		require.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestService_CreateDefaults_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)
	owner := uuid.New()

	var stored []*ledger.Category

	repo.EXPECT().ListCategories(gomock.Any(), owner).DoAndReturn(
		func(context.Context, uuid.UUID) ([]*ledger.Category, error) { return stored, nil },
	).AnyTimes()
	repo.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c *ledger.Category) error {
			c.ID = uuid.New()
			stored = append(stored, c)

			return nil
		},
	).AnyTimes()

	svc := category.NewService(repo, nil)

	first, err := svc.CreateDefaults(context.Background(), owner)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.CreateDefaults(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, stored, len(first))

	fallback, err := svc.Fallback(context.Background(), owner, ledger.TypeExpense)
	require.NoError(t, err)

	var found *ledger.Category
	for _, c := range stored {
		if c.ID == fallback {
			found = c
		}
	}

	require.NotNil(t, found)
	assert.Equal(t, category.OtherName, found.Name)
	assert.Equal(t, ledger.TypeExpense, found.Type)
}

func TestService_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)
	owner := uuid.New()

	repo.EXPECT().ListCategories(gomock.Any(), owner).Return([]*ledger.Category{
		{Name: "Salary", Type: ledger.TypeIncome, IsActive: true},
		{Name: "Food", Type: ledger.TypeExpense, IsActive: true},
		{Name: "Old", Type: ledger.TypeExpense, IsActive: false},
	}, nil)

	st, err := category.NewService(repo, nil).Stats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, &category.Stats{
		TotalCategories:    3,
		IncomeCategories:   1,
		ExpenseCategories:  2,
		ActiveCategories:   2,
		InactiveCategories: 1,
	}, st)
}

func TestService_List_Filters(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)
	owner := uuid.New()

	repo.EXPECT().ListCategories(gomock.Any(), owner).Return([]*ledger.Category{
		{Name: "Salary", Type: ledger.TypeIncome, IsActive: true},
		{Name: "Food", Type: ledger.TypeExpense, IsActive: true},
	}, nil)

	got, err := category.NewService(repo, nil).List(context.Background(), owner, query.CategoryFilter{Type: new(ledger.TypeIncome)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Salary", got[0].Name)
}

func TestService_Create_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := category.NewService(category.NewMockRepository(ctrl), nil)

	_, err := svc.Create(context.Background(), uuid.New(), category.CreateParams{Name: "Food", Type: "TRANSFER"})

	var ve *ledger.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "type", ve.Field)
}

func TestService_Update_Type(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()

	tests := []struct {
		name     string
		newType  ledger.Type
		inUse    *bool
		wantErr  error
		wantType ledger.Type
	}{
		{name: "SameTypeSkipsUsageCheck", newType: ledger.TypeExpense, wantType: ledger.TypeExpense},
		{name: "UnusedCategory", newType: ledger.TypeIncome, inUse: new(false), wantType: ledger.TypeIncome},
		{name: "ReferencedCategory", newType: ledger.TypeIncome, inUse: new(true), wantErr: ledger.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := category.NewMockRepository(ctrl)

			repo.EXPECT().GetCategory(gomock.Any(), owner, id).
				Return(&ledger.Category{ID: id, OwnerID: owner, Name: "Groceries", Type: ledger.TypeExpense, IsActive: true}, nil)

			if tt.inUse != nil {
				repo.EXPECT().CategoryInUse(gomock.Any(), owner, id).Return(*tt.inUse, nil)
			}

			if tt.wantErr == nil {
				repo.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).Return(nil)
			}

			got, err := category.NewService(repo, nil).Update(context.Background(), owner, id, category.UpdateParams{Type: new(tt.newType)})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}
