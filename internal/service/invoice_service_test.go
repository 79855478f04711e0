package service

import (
	"context"
	"testing"
	"time"

	"zenith/internal/apperror"
	"zenith/internal/dto"
	"zenith/internal/model"
	"zenith/internal/repository"
	"zenith/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fixture ──────────────────────────────────────────────────────────────────

type invoiceFixture struct {
	st        *store.Store
	products  repository.ProductRepository
	customers repository.CustomerRepository
	invoices  repository.InvoiceRepository
	sales     repository.SaleRepository
	svc       *invoiceService
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	st, err := store.Open(t.TempDir(), "zenith")
	require.NoError(t, err)

	f := &invoiceFixture{
		st:        st,
		products:  repository.NewProductRepository(st),
		customers: repository.NewCustomerRepository(st),
		invoices:  repository.NewInvoiceRepository(st),
		sales:     repository.NewSaleRepository(st),
	}
	f.svc = NewInvoiceService(f.invoices, f.products, f.customers, f.sales).(*invoiceService)

	// Deterministic clock, advancing one second per call so generated
	// invoice ids never collide.
	base := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)
	tick := 0
	f.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return f
}

func (f *invoiceFixture) seedProduct(t *testing.T, name, sku string, stock int, price float64) *model.Product {
	t.Helper()
	svc := NewProductService(f.products, 10)
	p, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:  name,
		SKU:   sku,
		Stock: stock,
		Price: decimal.NewFromFloat(price),
	})
	require.NoError(t, err)
	return p
}

func (f *invoiceFixture) seedCustomer(t *testing.T, name string) *model.Customer {
	t.Helper()
	svc := NewCustomerService(f.customers)
	c, err := svc.Create(context.Background(), dto.CreateCustomerRequest{
		Name:  name,
		Email: "test@example.com",
	})
	require.NoError(t, err)
	return c
}

func (f *invoiceFixture) stockOf(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func (f *invoiceFixture) createInvoice(t *testing.T, customerID, productID string, qty int, status model.InvoiceStatus) *model.Invoice {
	t.Helper()
	ctx := context.Background()
	d := f.svc.NewDraft(nil)
	d.CustomerID = customerID
	d.Status = status
	require.NoError(t, f.svc.AddItem(ctx, d, productID, qty))
	inv, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)
	return inv
}

// ── Creation ─────────────────────────────────────────────────────────────────

func TestCreateInvoiceReservesStock(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Desk Lamp", "DL-01", 10, 25.50)
	c := f.seedCustomer(t, "Acme Corp")

	inv := f.createInvoice(t, c.ID, p.ID, 4, model.StatusUnpaid)

	assert.Equal(t, 6, f.stockOf(t, p.ID))
	assert.Contains(t, inv.ID, "#INV-")
	assert.Equal(t, "Acme Corp", inv.CustomerName)
	assert.Equal(t, decimal.NewFromFloat(25.50).Mul(decimal.NewFromInt(4)).String(), inv.Total.String())

	sales, err := f.sales.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales, "unpaid invoice must not create a sale")

	invoices, err := f.invoices.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, inv.ID, invoices[0].ID)
}

func TestCreateInvoicePaidCreatesSale(t *testing.T) {
	f := newInvoiceFixture(t)
	p := f.seedProduct(t, "Notebook", "NB-01", 20, 3)
	c := f.seedCustomer(t, "Jordan")

	inv := f.createInvoice(t, c.ID, p.ID, 5, model.StatusPaid)

	sales, err := f.sales.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, inv.ID, sales[0].InvoiceID)
	assert.Equal(t, inv.Total.String(), sales[0].Amount.String())
	assert.Equal(t, inv.Date.Format(model.SaleDateLayout), sales[0].Date)
}

// ── Edit: stock reversal and reapplication ───────────────────────────────────

func TestEditWithUnchangedItemsIsStockNeutral(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Chair", "CH-01", 12, 80)
	c := f.seedCustomer(t, "Acme Corp")
	inv := f.createInvoice(t, c.ID, p.ID, 5, model.StatusUnpaid)
	require.Equal(t, 7, f.stockOf(t, p.ID))

	// Flip status only; items untouched.
	d := f.svc.NewDraft(inv)
	d.Status = model.StatusPaid
	_, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)

	assert.Equal(t, 7, f.stockOf(t, p.ID))
}

func TestEditQuantityAppliesDelta(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Monitor", "MN-01", 10, 150)
	c := f.seedCustomer(t, "Acme Corp")
	inv := f.createInvoice(t, c.ID, p.ID, 4, model.StatusUnpaid)
	require.Equal(t, 6, f.stockOf(t, p.ID))

	d := f.svc.NewDraft(inv)
	f.svc.RemoveItem(d, p.ID)
	require.NoError(t, f.svc.AddItem(ctx, d, p.ID, 6))
	_, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)

	// q1=4 → q2=6 must move stock by exactly q1−q2 = −2.
	assert.Equal(t, 4, f.stockOf(t, p.ID))
}

func TestEditPreservesInvoicePosition(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Cable", "CB-01", 100, 5)
	c := f.seedCustomer(t, "Acme Corp")
	first := f.createInvoice(t, c.ID, p.ID, 1, model.StatusUnpaid)
	second := f.createInvoice(t, c.ID, p.ID, 1, model.StatusUnpaid)

	d := f.svc.NewDraft(first)
	d.Status = model.StatusPaid
	_, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)

	invoices, err := f.invoices.List(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, first.ID, invoices[0].ID)
	assert.Equal(t, second.ID, invoices[1].ID)
	assert.Equal(t, model.StatusPaid, invoices[0].Status)
}

// ── Sales derivation ─────────────────────────────────────────────────────────

func TestSaleFollowsStatusTransitions(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Desk", "DK-01", 30, 200)
	c := f.seedCustomer(t, "Acme Corp")
	inv := f.createInvoice(t, c.ID, p.ID, 2, model.StatusUnpaid)

	listSales := func() []model.Sale {
		sales, err := f.sales.List(ctx)
		require.NoError(t, err)
		return sales
	}
	save := func(status model.InvoiceStatus) {
		current, err := f.invoices.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		d := f.svc.NewDraft(current)
		d.Status = status
		_, err = f.svc.SaveDraft(ctx, d)
		require.NoError(t, err)
	}

	// Unpaid, no sale → no-op.
	save(model.StatusUnpaid)
	assert.Empty(t, listSales())

	// Paid, no sale → insert.
	save(model.StatusPaid)
	require.Len(t, listSales(), 1)

	// Paid, sale exists → amount refreshed, still one record.
	save(model.StatusPaid)
	sales := listSales()
	require.Len(t, sales, 1, "no duplicate sale per invoice")
	assert.Equal(t, inv.Total.String(), sales[0].Amount.String())

	// Unpaid, sale exists → removed.
	save(model.StatusUnpaid)
	assert.Empty(t, listSales())
}

func TestPaidEditRefreshesSaleAmount(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Shelf", "SH-01", 50, 40)
	c := f.seedCustomer(t, "Acme Corp")
	inv := f.createInvoice(t, c.ID, p.ID, 2, model.StatusPaid)

	d := f.svc.NewDraft(inv)
	f.svc.RemoveItem(d, p.ID)
	require.NoError(t, f.svc.AddItem(ctx, d, p.ID, 5))
	updated, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)

	sales, err := f.sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, updated.Total.String(), sales[0].Amount.String())
	// Date and invoiceId never change on edit.
	assert.Equal(t, inv.Date.Format(model.SaleDateLayout), sales[0].Date)
	assert.Equal(t, inv.ID, sales[0].InvoiceID)
}

// ── Full lifecycle ───────────────────────────────────────────────────────────

func TestInvoiceLifecycle(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Widget", "WG-01", 10, 9.99)
	c := f.seedCustomer(t, "Acme Corp")

	// Create qty=4 unpaid: stock 10 → 6, no sale.
	inv := f.createInvoice(t, c.ID, p.ID, 4, model.StatusUnpaid)
	assert.Equal(t, 6, f.stockOf(t, p.ID))
	sales, _ := f.sales.List(ctx)
	assert.Empty(t, sales)

	// Mark paid: stock stays 6, sale appears with the invoice total.
	d := f.svc.NewDraft(inv)
	d.Status = model.StatusPaid
	_, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 6, f.stockOf(t, p.ID))
	sales, _ = f.sales.List(ctx)
	require.Len(t, sales, 1)
	assert.Equal(t, inv.Total.String(), sales[0].Amount.String())

	// Raise quantity to 6: stock 6 → 4, sale amount follows the new total.
	current, err := f.invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	d = f.svc.NewDraft(current)
	f.svc.RemoveItem(d, p.ID)
	require.NoError(t, f.svc.AddItem(ctx, d, p.ID, 6))
	updated, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 4, f.stockOf(t, p.ID))
	sales, _ = f.sales.List(ctx)
	require.Len(t, sales, 1)
	assert.Equal(t, updated.Total.String(), sales[0].Amount.String())

	// Delete: stock back to 10, invoice and sale gone.
	current, err = f.invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, *current))
	assert.Equal(t, 10, f.stockOf(t, p.ID))
	invoices, _ := f.invoices.List(ctx)
	assert.Empty(t, invoices)
	sales, _ = f.sales.List(ctx)
	assert.Empty(t, sales)
}

// ── Validation gates ─────────────────────────────────────────────────────────

func TestAddItemRejectsInsufficientStock(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Rare Part", "RP-01", 3, 100)
	f.seedCustomer(t, "Acme Corp")

	d := f.svc.NewDraft(nil)
	err := f.svc.AddItem(ctx, d, p.ID, 5)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Empty(t, d.Items)

	// Nothing was mutated.
	assert.Equal(t, 3, f.stockOf(t, p.ID))
	invoices, _ := f.invoices.List(ctx)
	assert.Empty(t, invoices)
}

func TestAddItemRejectsDuplicateProduct(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Stapler", "ST-01", 10, 12)

	d := f.svc.NewDraft(nil)
	require.NoError(t, f.svc.AddItem(ctx, d, p.ID, 2))
	err := f.svc.AddItem(ctx, d, p.ID, 1)
	assert.ErrorIs(t, err, apperror.ErrDuplicateItem)
	assert.Len(t, d.Items, 1)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Tape", "TP-01", 10, 2)

	d := f.svc.NewDraft(nil)
	assert.ErrorIs(t, f.svc.AddItem(ctx, d, p.ID, 0), apperror.ErrInvalidQuantity)
	assert.ErrorIs(t, f.svc.AddItem(ctx, d, p.ID, -3), apperror.ErrInvalidQuantity)
}

// The add gate compares against the product's currently displayed stock, not
// against what a reversal of the edit-in-progress would free up. Raising a
// quantity on a near-exhausted product can therefore be rejected even though
// the invoice itself holds the missing units.
func TestAddItemChecksDisplayedStockDuringEdit(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Limited", "LM-01", 10, 60)
	c := f.seedCustomer(t, "Acme Corp")
	inv := f.createInvoice(t, c.ID, p.ID, 8, model.StatusUnpaid)
	require.Equal(t, 2, f.stockOf(t, p.ID))

	d := f.svc.NewDraft(inv)
	f.svc.RemoveItem(d, p.ID)
	err := f.svc.AddItem(ctx, d, p.ID, 3)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
}

// Save itself enforces only the net constraint: the prior version's
// reservation counts as available again.
func TestSaveAllowsNetIncreaseCoveredByReversal(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Limited", "LM-02", 10, 60)
	c := f.seedCustomer(t, "Acme Corp")
	inv := f.createInvoice(t, c.ID, p.ID, 8, model.StatusUnpaid)
	require.Equal(t, 2, f.stockOf(t, p.ID))

	edited := *inv
	edited.Items = []model.InvoiceItem{{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    9, // ≤ 2 displayed + 8 reversed
		Price:       p.Price,
	}}
	require.NoError(t, f.svc.Save(ctx, edited, inv))
	assert.Equal(t, 1, f.stockOf(t, p.ID))
}

func TestSaveRejectsEmptyItems(t *testing.T) {
	f := newInvoiceFixture(t)
	c := f.seedCustomer(t, "Acme Corp")

	d := f.svc.NewDraft(nil)
	d.CustomerID = c.ID
	_, err := f.svc.SaveDraft(context.Background(), d)
	assert.ErrorIs(t, err, apperror.ErrEmptyInvoice)
}

func TestSaveRejectsUnknownCustomer(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Pen", "PN-01", 10, 1)

	d := f.svc.NewDraft(nil)
	d.CustomerID = "no-such-customer"
	require.NoError(t, f.svc.AddItem(ctx, d, p.ID, 1))
	_, err := f.svc.SaveDraft(ctx, d)
	assert.ErrorIs(t, err, apperror.ErrCustomerNotFound)

	// Rejection happened before any mutation.
	assert.Equal(t, 10, f.stockOf(t, p.ID))
}

func TestSaveRejectsOverNetStock(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Scarce", "SC-01", 5, 10)
	c := f.seedCustomer(t, "Acme Corp")

	inv := model.Invoice{
		ID:         "#INV-999",
		CustomerID: c.ID,
		Items: []model.InvoiceItem{{
			ProductID: p.ID, ProductName: p.Name, Quantity: 6, Price: p.Price,
		}},
		Date:   time.Now(),
		Status: model.StatusUnpaid,
	}
	err := f.svc.Save(ctx, inv, nil)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, 5, f.stockOf(t, p.ID))
	invoices, _ := f.invoices.List(ctx)
	assert.Empty(t, invoices)
}

// ── Dangling product references ──────────────────────────────────────────────

func TestDeleteInvoiceSkipsMissingProduct(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Ephemeral", "EP-01", 10, 15)
	keep := f.seedProduct(t, "Durable", "DU-01", 10, 20)
	c := f.seedCustomer(t, "Acme Corp")

	d := f.svc.NewDraft(nil)
	d.CustomerID = c.ID
	d.Status = model.StatusPaid
	require.NoError(t, f.svc.AddItem(ctx, d, p.ID, 3))
	require.NoError(t, f.svc.AddItem(ctx, d, keep.ID, 2))
	inv, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)

	// Product vanishes while the invoice still references it.
	require.NoError(t, f.products.Delete(ctx, p.ID))

	require.NoError(t, f.svc.Delete(ctx, *inv))

	// The surviving product got its reversal; the deleted one is skipped.
	assert.Equal(t, 10, f.stockOf(t, keep.ID))
	invoices, _ := f.invoices.List(ctx)
	assert.Empty(t, invoices)
	sales, _ := f.sales.List(ctx)
	assert.Empty(t, sales)
}

func TestEditInvoiceSkipsMissingProduct(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Ephemeral", "EP-02", 10, 15)
	c := f.seedCustomer(t, "Acme Corp")
	inv := f.createInvoice(t, c.ID, p.ID, 4, model.StatusUnpaid)

	require.NoError(t, f.products.Delete(ctx, p.ID))

	// Marking the invoice paid must not fail on the dangling reference.
	d := f.svc.NewDraft(inv)
	d.Status = model.StatusPaid
	updated, err := f.svc.SaveDraft(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, updated.Status)

	sales, err := f.sales.List(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
}

// ── Total integrity ──────────────────────────────────────────────────────────

func TestSaveRecomputesTotal(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Gadget", "GD-01", 10, 12.50)
	c := f.seedCustomer(t, "Acme Corp")

	inv := model.Invoice{
		ID:         "#INV-12345",
		CustomerID: c.ID,
		Items: []model.InvoiceItem{{
			ProductID: p.ID, ProductName: p.Name, Quantity: 2, Price: p.Price,
		}},
		Total:  decimal.NewFromInt(9999), // tampered, must be ignored
		Date:   time.Now(),
		Status: model.StatusPaid,
	}
	require.NoError(t, f.svc.Save(ctx, inv, nil))

	stored, err := f.invoices.FindByID(ctx, "#INV-12345")
	require.NoError(t, err)
	assert.Equal(t, decimal.NewFromInt(25).String(), stored.Total.String())
	sales, _ := f.sales.List(ctx)
	require.Len(t, sales, 1)
	assert.Equal(t, decimal.NewFromInt(25).String(), sales[0].Amount.String())
}
