package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/product"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    product.CreateParams
		setupMock func(m *product.MockRepository)
		wantErr   error
		wantValid bool
	}

	validParams := product.CreateParams{
		SKU:               "POOL-001",
		Name:              "Chlorine Tablets",
		Category:          "Chemicals",
		Quantity:          10,
		CostPrice:         decimal.RequireFromString("40.00"),
		SellingPrice:      decimal.RequireFromString("55.00"),
		LowStockThreshold: 5,
	}

	tests := []testCase{
		{
			name:   "SuccessWithInitialStock",
			params: validParams,
			setupMock: func(m *product.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *product.Product, initial *ledger.Entry) error {
						require.NotNil(t, initial)
						assert.Equal(t, ledger.KindIn, initial.Kind)
						assert.Equal(t, 10, initial.Quantity)
						assert.Equal(t, "Initial stock", initial.Note)

						p.ID = uuid.New()

						return nil
					})
			},
			wantValid: true,
		},
		{
			name: "ZeroQuantitySkipsLedgerEntry",
			params: product.CreateParams{
				SKU:          "POOL-002",
				Name:         "Skimmer Net",
				CostPrice:    decimal.RequireFromString("10.00"),
				SellingPrice: decimal.RequireFromString("15.00"),
			},
			setupMock: func(m *product.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any(), gomock.Nil()).
					Return(nil)
			},
			wantValid: true,
		},
		{
			name: "MissingSKU",
			params: product.CreateParams{
				Name: "No SKU",
			},
		},
		{
			name: "NegativeQuantity",
			params: product.CreateParams{
				SKU:      "POOL-003",
				Name:     "Bad Quantity",
				Quantity: -1,
			},
		},
		{
			name:   "DuplicateSKU",
			params: validParams,
			setupMock: func(m *product.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(product.ErrDuplicateSKU)
			},
			wantErr: product.ErrDuplicateSKU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := product.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := product.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params, "admin")

			if tt.wantValid {
				require.NoError(t, err)
				assert.True(t, got.Active)

				return
			}

			require.Error(t, err)
			assert.Nil(t, got)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			var verr *product.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func stockProduct(qty int) *product.Product {
	return &product.Product{
		ID:                uuid.New(),
		SKU:               "POOL-001",
		Name:              "Chlorine Tablets",
		Quantity:          qty,
		LowStockThreshold: 5,
		Active:            true,
	}
}

func TestService_AddStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := stockProduct(10)
	tx := product.NewMockStockTx(ctrl)
	tx.EXPECT().Product().Return(p)
	tx.EXPECT().SetQuantity(gomock.Any(), 13).Return(nil)
	tx.EXPECT().
		AppendEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e ledger.Entry) error {
			assert.Equal(t, ledger.KindIn, e.Kind)
			assert.Equal(t, 3, e.Quantity)
			assert.Equal(t, "restock", e.Note)
			assert.Equal(t, "admin", e.CreatedBy)
			return nil
		})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(errors.New("already committed"))

	repo := product.NewMockRepository(ctrl)
	repo.EXPECT().BeginStockUpdate(gomock.Any(), p.ID).Return(tx, nil)

	svc := product.NewService(repo)
	got, err := svc.AddStock(context.Background(), p.ID, 3, "restock", "admin")

	require.NoError(t, err)
	assert.Equal(t, 13, got.Quantity)
}

func TestService_AddStock_RejectsNonPositive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := product.NewService(product.NewMockRepository(ctrl))

	for _, qty := range []int{0, -4} {
		_, err := svc.AddStock(context.Background(), uuid.New(), qty, "", "admin")

		var verr *product.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestService_RemoveStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := stockProduct(10)
	tx := product.NewMockStockTx(ctrl)
	tx.EXPECT().Product().Return(p)
	tx.EXPECT().SetQuantity(gomock.Any(), 7).Return(nil)
	tx.EXPECT().
		AppendEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e ledger.Entry) error {
			assert.Equal(t, ledger.KindOut, e.Kind)
			assert.Equal(t, -3, e.Quantity)
			return nil
		})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(errors.New("already committed"))

	repo := product.NewMockRepository(ctrl)
	repo.EXPECT().BeginStockUpdate(gomock.Any(), p.ID).Return(tx, nil)

	svc := product.NewService(repo)
	got, err := svc.RemoveStock(context.Background(), p.ID, 3, "damaged", "admin")

	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
}

func TestService_RemoveStock_Insufficient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := stockProduct(7)
	tx := product.NewMockStockTx(ctrl)
	tx.EXPECT().Product().Return(p)
	// No SetQuantity, no AppendEntry, no Commit: the transaction only rolls back.
	tx.EXPECT().Rollback().Return(nil)

	repo := product.NewMockRepository(ctrl)
	repo.EXPECT().BeginStockUpdate(gomock.Any(), p.ID).Return(tx, nil)

	svc := product.NewService(repo)
	_, err := svc.RemoveStock(context.Background(), p.ID, 20, "", "admin")

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 7, stockErr.Available)
	assert.Equal(t, 20, stockErr.Requested)
	assert.Equal(t, "Chlorine Tablets", stockErr.Name)
}

func TestService_SetStock(t *testing.T) {
	type testCase struct {
		name      string
		current   int
		target    int
		wantDelta int
		wantEntry bool
	}

	tests := []testCase{
		{name: "SetUp", current: 4, target: 10, wantDelta: 6, wantEntry: true},
		{name: "SetDown", current: 10, target: 4, wantDelta: -6, wantEntry: true},
		{name: "NoChangeWritesNoEntry", current: 5, target: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			p := stockProduct(tt.current)
			tx := product.NewMockStockTx(ctrl)
			tx.EXPECT().Product().Return(p)
			tx.EXPECT().SetQuantity(gomock.Any(), tt.target).Return(nil)

			if tt.wantEntry {
				tx.EXPECT().
					AppendEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e ledger.Entry) error {
						assert.Equal(t, ledger.KindAdj, e.Kind)
						assert.Equal(t, tt.wantDelta, e.Quantity)
						return nil
					})
			}

			tx.EXPECT().Commit().Return(nil)
			tx.EXPECT().Rollback().Return(errors.New("already committed"))

			repo := product.NewMockRepository(ctrl)
			repo.EXPECT().BeginStockUpdate(gomock.Any(), p.ID).Return(tx, nil)

			svc := product.NewService(repo)
			got, err := svc.SetStock(context.Background(), p.ID, tt.target, "stocktake", "admin")

			require.NoError(t, err)
			assert.Equal(t, tt.target, got.Quantity)
		})
	}
}

func TestService_SetStock_RejectsNegative(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := product.NewService(product.NewMockRepository(ctrl))
	_, err := svc.SetStock(context.Background(), uuid.New(), -1, "", "admin")

	var verr *product.ValidationError
	assert.ErrorAs(t, err, &verr)
}
