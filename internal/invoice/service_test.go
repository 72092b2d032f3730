package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thepoolshop/shopkeep/internal/invoice"
	"github.com/thepoolshop/shopkeep/internal/ledger"
	"github.com/thepoolshop/shopkeep/internal/product"
)

var fixedDate = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedDate }

func chlorine(qty int) *product.Product {
	return &product.Product{
		ID:           uuid.New(),
		SKU:          "POOL-001",
		Name:         "Chlorine Tablets",
		Quantity:     qty,
		SellingPrice: d("10.00"),
		Active:       true,
	}
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p1 := chlorine(10)
	p2 := &product.Product{
		ID:           uuid.New(),
		SKU:          "POOL-002",
		Name:         "Test Strips",
		Quantity:     3,
		SellingPrice: d("5.00"),
		Active:       true,
	}

	products := invoice.NewMockProductGetter(ctrl)
	products.EXPECT().Get(gomock.Any(), p1.ID).Return(p1, nil)
	products.EXPECT().Get(gomock.Any(), p2.ID).Return(p2, nil)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().
		MaxNumberWithPrefix(gomock.Any(), "INV-20260828-").
		Return("INV-20260828-0007", nil)
	repo.EXPECT().
		CreateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			assert.Equal(t, "INV-20260828-0008", inv.Number)
			assert.Equal(t, invoice.StatusDraft, inv.Status)
			assert.Equal(t, "admin", inv.CreatedBy)
			assert.True(t, inv.Subtotal.Equal(d("25.00")))
			assert.True(t, inv.TaxAmount.Equal(d("3.75")))
			assert.True(t, inv.TotalAmount.Equal(d("28.75")))
			require.Len(t, inv.Items, 2)
			// Unit prices snapshotted from the products.
			assert.True(t, inv.Items[0].UnitPrice.Equal(d("10.00")))
			assert.True(t, inv.Items[1].UnitPrice.Equal(d("5.00")))

			inv.ID = uuid.New()

			return nil
		})

	svc := invoice.NewService(repo, products, d("15.00"), fixedNow)
	got, err := svc.Create(context.Background(), invoice.CreateParams{
		Items: []invoice.ItemParams{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 1},
		},
	}, "admin")

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
}

func TestService_Create_RetriesOnNumberConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := chlorine(10)
	products := invoice.NewMockProductGetter(ctrl)
	products.EXPECT().Get(gomock.Any(), p.ID).Return(p, nil)

	repo := invoice.NewMockRepository(ctrl)
	// First attempt loses the race; second succeeds with the next number.
	gomock.InOrder(
		repo.EXPECT().MaxNumberWithPrefix(gomock.Any(), "INV-20260828-").Return("", nil),
		repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(invoice.ErrNumberTaken),
		repo.EXPECT().MaxNumberWithPrefix(gomock.Any(), "INV-20260828-").Return("INV-20260828-0001", nil),
		repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
				assert.Equal(t, "INV-20260828-0002", inv.Number)
				return nil
			}),
	)

	svc := invoice.NewService(repo, products, d("15.00"), fixedNow)
	_, err := svc.Create(context.Background(), invoice.CreateParams{
		Items: []invoice.ItemParams{{ProductID: p.ID, Quantity: 1}},
	}, "admin")

	require.NoError(t, err)
}

func TestService_Create_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := chlorine(10)
	products := invoice.NewMockProductGetter(ctrl)
	products.EXPECT().Get(gomock.Any(), p.ID).Return(p, nil)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().MaxNumberWithPrefix(gomock.Any(), gomock.Any()).Return("", nil).Times(3)
	repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(invoice.ErrNumberTaken).Times(3)

	svc := invoice.NewService(repo, products, d("15.00"), fixedNow)
	_, err := svc.Create(context.Background(), invoice.CreateParams{
		Items: []invoice.ItemParams{{ProductID: p.ID, Quantity: 1}},
	}, "admin")

	assert.ErrorIs(t, err, invoice.ErrNumberTaken)
}

func TestService_Create_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := chlorine(2)
	products := invoice.NewMockProductGetter(ctrl)
	products.EXPECT().Get(gomock.Any(), p.ID).Return(p, nil).AnyTimes()

	svc := invoice.NewService(invoice.NewMockRepository(ctrl), products, d("15.00"), fixedNow)

	t.Run("NoItems", func(t *testing.T) {
		_, err := svc.Create(context.Background(), invoice.CreateParams{}, "admin")
		assert.ErrorIs(t, err, invoice.ErrNoItems)
	})

	t.Run("NonPositiveQuantity", func(t *testing.T) {
		_, err := svc.Create(context.Background(), invoice.CreateParams{
			Items: []invoice.ItemParams{{ProductID: p.ID, Quantity: 0}},
		}, "admin")
		assert.ErrorIs(t, err, invoice.ErrInvalidQuantity)
	})

	t.Run("NotEnoughStock", func(t *testing.T) {
		_, err := svc.Create(context.Background(), invoice.CreateParams{
			Items: []invoice.ItemParams{{ProductID: p.ID, Quantity: 5}},
		}, "admin")

		var stockErr *product.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 2, stockErr.Available)
	})
}

func draftInvoice(items ...*invoice.Item) *invoice.Invoice {
	return &invoice.Invoice{
		ID:      uuid.New(),
		Number:  "INV-20260828-0001",
		Status:  invoice.StatusDraft,
		TaxRate: d("15.00"),
		Items:   items,
	}
}

func TestService_FinalizeAndPay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := chlorine(10)
	inv := draftInvoice(&invoice.Item{
		ID:        uuid.New(),
		ProductID: p.ID,
		Quantity:  3,
		UnitPrice: d("10.00"),
	})

	tx := invoice.NewMockFinalizeTx(ctrl)
	tx.EXPECT().Invoice().Return(inv)
	tx.EXPECT().LockProduct(gomock.Any(), p.ID).Return(p, nil)
	tx.EXPECT().SetProductQuantity(gomock.Any(), p.ID, 7).Return(nil)
	tx.EXPECT().
		AppendEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e ledger.Entry) error {
			assert.Equal(t, ledger.KindOut, e.Kind)
			assert.Equal(t, -3, e.Quantity)
			assert.Equal(t, "Sold via INV-20260828-0001", e.Note)
			assert.Equal(t, "admin", e.CreatedBy)
			return nil
		})
	tx.EXPECT().MarkPaid(gomock.Any(), fixedDate).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().BeginFinalize(gomock.Any(), inv.ID).Return(tx, nil)

	svc := invoice.NewService(repo, invoice.NewMockProductGetter(ctrl), d("15.00"), fixedNow)
	got, err := svc.FinalizeAndPay(context.Background(), inv.ID, "admin")

	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)
	assert.Equal(t, fixedDate, *got.PaidAt)
}

func TestService_FinalizeAndPay_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	paidAt := fixedDate.Add(-time.Hour)
	inv := draftInvoice()
	inv.Status = invoice.StatusPaid
	inv.PaidAt = &paidAt

	tx := invoice.NewMockFinalizeTx(ctrl)
	tx.EXPECT().Invoice().Return(inv)
	// Nothing else happens: no locks, no decrements, no ledger entries.
	tx.EXPECT().Rollback().Return(nil)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().BeginFinalize(gomock.Any(), inv.ID).Return(tx, nil)

	svc := invoice.NewService(repo, invoice.NewMockProductGetter(ctrl), d("15.00"), fixedNow)
	got, err := svc.FinalizeAndPay(context.Background(), inv.ID, "admin")

	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, got.Status)
	assert.Equal(t, paidAt, *got.PaidAt)
}

// When a later item fails the sufficiency check, the transaction is only
// rolled back; nothing commits and no payment happens, so the earlier
// decrements are never visible.
func TestService_FinalizeAndPay_InsufficientStockAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Choose IDs so pFirst sorts before pSecond and the failure hits the
	// second lock.
	pFirst := chlorine(10)
	pFirst.ID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	pSecond := &product.Product{
		ID:       uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Name:     "Pool Pump",
		Quantity: 1,
	}

	inv := draftInvoice(
		&invoice.Item{ID: uuid.New(), ProductID: pFirst.ID, Quantity: 2, UnitPrice: d("10.00")},
		&invoice.Item{ID: uuid.New(), ProductID: pSecond.ID, Quantity: 5, UnitPrice: d("350.00")},
	)

	tx := invoice.NewMockFinalizeTx(ctrl)
	tx.EXPECT().Invoice().Return(inv)
	tx.EXPECT().LockProduct(gomock.Any(), pFirst.ID).Return(pFirst, nil)
	tx.EXPECT().SetProductQuantity(gomock.Any(), pFirst.ID, 8).Return(nil)
	tx.EXPECT().AppendEntry(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().LockProduct(gomock.Any(), pSecond.ID).Return(pSecond, nil)
	// No MarkPaid, no Commit.
	tx.EXPECT().Rollback().Return(nil)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().BeginFinalize(gomock.Any(), inv.ID).Return(tx, nil)

	svc := invoice.NewService(repo, invoice.NewMockProductGetter(ctrl), d("15.00"), fixedNow)
	_, err := svc.FinalizeAndPay(context.Background(), inv.ID, "admin")

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Pool Pump", stockErr.Name)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
}

func TestService_AddItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := chlorine(10)
	inv := draftInvoice(&invoice.Item{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  1,
		UnitPrice: d("5.00"),
	})

	products := invoice.NewMockProductGetter(ctrl)
	products.EXPECT().Get(gomock.Any(), p.ID).Return(p, nil)

	repo := invoice.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil),
		repo.EXPECT().
			AddItem(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, item *invoice.Item, totals invoice.Totals) error {
				assert.Equal(t, inv.ID, item.InvoiceID)
				assert.True(t, item.UnitPrice.Equal(d("10.00")))
				// 1x5.00 + 2x10.00 = 25.00 @ 15% tax.
				assert.True(t, totals.Subtotal.Equal(d("25.00")))
				assert.True(t, totals.TaxAmount.Equal(d("3.75")))
				assert.True(t, totals.TotalAmount.Equal(d("28.75")))
				return nil
			}),
		repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil),
	)

	svc := invoice.NewService(repo, products, d("15.00"), fixedNow)
	_, err := svc.AddItem(context.Background(), inv.ID, invoice.ItemParams{ProductID: p.ID, Quantity: 2})

	require.NoError(t, err)
}

func TestService_AddItem_RejectedWhenPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inv := draftInvoice()
	inv.Status = invoice.StatusPaid

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	svc := invoice.NewService(repo, invoice.NewMockProductGetter(ctrl), d("15.00"), fixedNow)
	_, err := svc.AddItem(context.Background(), inv.ID, invoice.ItemParams{ProductID: uuid.New(), Quantity: 1})

	assert.ErrorIs(t, err, invoice.ErrInvoicePaid)
}

func TestService_RemoveItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	keep := &invoice.Item{ID: uuid.New(), Quantity: 2, UnitPrice: d("10.00")}
	drop := &invoice.Item{ID: uuid.New(), Quantity: 1, UnitPrice: d("5.00")}
	inv := draftInvoice(keep, drop)

	repo := invoice.NewMockRepository(ctrl)
	gomock.InOrder(
		repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil),
		repo.EXPECT().
			RemoveItem(gomock.Any(), inv.ID, drop.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ uuid.UUID, totals invoice.Totals) error {
				// Only the kept item remains: 20.00 @ 15%.
				assert.True(t, totals.Subtotal.Equal(d("20.00")))
				assert.True(t, totals.TotalAmount.Equal(d("23.00")))
				return nil
			}),
		repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil),
	)

	svc := invoice.NewService(repo, invoice.NewMockProductGetter(ctrl), d("15.00"), fixedNow)
	_, err := svc.RemoveItem(context.Background(), inv.ID, drop.ID)

	require.NoError(t, err)
}

func TestService_RemoveItem_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inv := draftInvoice(&invoice.Item{ID: uuid.New(), Quantity: 1, UnitPrice: d("5.00")})

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	svc := invoice.NewService(repo, invoice.NewMockProductGetter(ctrl), d("15.00"), fixedNow)
	_, err := svc.RemoveItem(context.Background(), inv.ID, uuid.New())

	assert.ErrorIs(t, err, invoice.ErrItemNotFound)
}
