package service

import (
	"context"
	"fmt"
	"time"

	"zenith/internal/apperror"
	"zenith/internal/model"
	"zenith/internal/repository"
	"zenith/internal/store"

	"github.com/shopspring/decimal"
)

// InvoiceService owns the only place where Invoices, Products.stock and Sales
// are written together. Save and Delete are each one store transaction.
type InvoiceService interface {
	List(ctx context.Context) ([]model.Invoice, error)
	FindByID(ctx context.Context, id string) (*model.Invoice, error)

	// Draft assembly for the invoice form.
	NewDraft(prev *model.Invoice) *InvoiceDraft
	AddItem(ctx context.Context, d *InvoiceDraft, productID string, quantity int) error
	RemoveItem(d *InvoiceDraft, productID string)
	SaveDraft(ctx context.Context, d *InvoiceDraft) (*model.Invoice, error)

	// Save persists inv and reconciles stock and sales. prev must be the
	// prior persisted version when editing, nil when creating.
	Save(ctx context.Context, inv model.Invoice, prev *model.Invoice) error
	// Delete removes the invoice, hands its reserved stock back and drops
	// any associated sale.
	Delete(ctx context.Context, inv model.Invoice) error
}

type invoiceService struct {
	repo         repository.InvoiceRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	now          func() time.Time
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
) InvoiceService {
	return &invoiceService{
		repo:         repo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		now:          time.Now,
	}
}

func (s *invoiceService) List(ctx context.Context) ([]model.Invoice, error) {
	return s.repo.List(ctx)
}

func (s *invoiceService) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	return s.repo.FindByID(ctx, id)
}

// ── Draft assembly ───────────────────────────────────────────────────────────

// InvoiceDraft is an invoice being composed or edited. Identity and date are
// frozen at first save; line items carry name/price snapshots taken when the
// item was added.
type InvoiceDraft struct {
	CustomerID string
	Status     model.InvoiceStatus
	Items      []model.InvoiceItem

	id   string
	date time.Time
}

// Total sums price×quantity over the draft's current line items.
func (d *InvoiceDraft) Total() decimal.Decimal {
	return model.Invoice{Items: d.Items}.ComputeTotal()
}

func (s *invoiceService) NewDraft(prev *model.Invoice) *InvoiceDraft {
	if prev == nil {
		return &InvoiceDraft{Status: model.StatusUnpaid}
	}
	return &InvoiceDraft{
		CustomerID: prev.CustomerID,
		Status:     prev.Status,
		Items:      append([]model.InvoiceItem(nil), prev.Items...),
		id:         prev.ID,
		date:       prev.Date,
	}
}

// AddItem appends a line for productID, snapshotting the product's current
// name and price. The quantity is checked against the product's current
// catalog stock — even while editing an existing invoice, where the draft's
// own prior reservation has not been handed back yet. A product may appear at
// most once per invoice; remove and re-add to change a quantity.
func (s *invoiceService) AddItem(ctx context.Context, d *InvoiceDraft, productID string, quantity int) error {
	if quantity <= 0 {
		return apperror.ErrInvalidQuantity
	}
	for _, item := range d.Items {
		if item.ProductID == productID {
			return apperror.ErrDuplicateItem
		}
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return apperror.ErrProductNotFound
	}
	if product.Stock < quantity {
		return fmt.Errorf("%w: %s has %d in stock", apperror.ErrInsufficientStock, product.Name, product.Stock)
	}
	d.Items = append(d.Items, model.InvoiceItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
	})
	return nil
}

func (s *invoiceService) RemoveItem(d *InvoiceDraft, productID string) {
	kept := d.Items[:0]
	for _, item := range d.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	d.Items = kept
}

// SaveDraft assembles the invoice and runs Save against the currently
// persisted version (if any).
func (s *invoiceService) SaveDraft(ctx context.Context, d *InvoiceDraft) (*model.Invoice, error) {
	customer, err := s.customerRepo.FindByID(ctx, d.CustomerID)
	if err != nil {
		return nil, apperror.ErrCustomerNotFound
	}

	inv := model.Invoice{
		ID:           d.id,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Items:        append([]model.InvoiceItem(nil), d.Items...),
		Date:         d.date,
		Status:       d.Status,
	}
	if inv.ID == "" {
		now := s.now()
		inv.ID = fmt.Sprintf("#INV-%d", now.UnixMilli())
		inv.Date = now
	}
	if inv.Status == "" {
		inv.Status = model.StatusUnpaid
	}

	var prev *model.Invoice
	if existing, err := s.repo.FindByID(ctx, inv.ID); err == nil {
		prev = existing
	}

	if err := s.Save(ctx, inv, prev); err != nil {
		return nil, err
	}
	inv.Total = inv.ComputeTotal()
	return &inv, nil
}

// ── Save ─────────────────────────────────────────────────────────────────────
// One logical transaction:
//  1. Validate — non-empty items, positive quantities, known status, customer
//     resolves, enough stock to cover the net new quantity per product.
//     Rejections happen before any mutation.
//  2. Reverse the previous version's reservations into product stock, then
//     apply the new items; the products array is written once, so no reader
//     observes the half-reversed state.
//  3. Upsert the invoice: in place on edit, appended on insert.
//  4. Re-derive the sale from the invoice's new status.

func (s *invoiceService) Save(ctx context.Context, inv model.Invoice, prev *model.Invoice) error {
	if len(inv.Items) == 0 {
		return apperror.ErrEmptyInvoice
	}
	for _, item := range inv.Items {
		if item.Quantity <= 0 {
			return apperror.ErrInvalidQuantity
		}
	}
	if inv.Status != model.StatusPaid && inv.Status != model.StatusUnpaid {
		return apperror.NewValidation(map[string]string{"status": "must be Paid or Unpaid"})
	}
	if _, err := s.customerRepo.FindByID(ctx, inv.CustomerID); err != nil {
		return apperror.ErrCustomerNotFound
	}

	// Total is never trusted from the caller.
	inv.Total = inv.ComputeTotal()

	// Quantity reserved by the prior version, credited back per product when
	// checking availability of the new quantities.
	prevQty := make(map[string]int)
	if prev != nil {
		for _, item := range prev.Items {
			prevQty[item.ProductID] += item.Quantity
		}
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return err
	}
	stockByID := make(map[string]int, len(products))
	nameByID := make(map[string]string, len(products))
	for _, p := range products {
		stockByID[p.ID] = p.Stock
		nameByID[p.ID] = p.Name
	}
	for _, item := range inv.Items {
		stock, ok := stockByID[item.ProductID]
		if !ok {
			// Product deleted while the invoice referenced it: the line is
			// kept as a snapshot and no longer moves stock.
			continue
		}
		if item.Quantity > stock+prevQty[item.ProductID] {
			return fmt.Errorf("%w: %s has %d in stock", apperror.ErrInsufficientStock, nameByID[item.ProductID], stock)
		}
	}

	return s.repo.Store().Update(func(tx *store.Tx) error {
		products, err := s.productRepo.ListTx(tx)
		if err != nil {
			return err
		}
		index := make(map[string]int, len(products))
		for i, p := range products {
			index[p.ID] = i
		}

		// Reversal before application: an unchanged line nets to zero, a
		// changed quantity nets to the delta. Lines whose product has been
		// deleted are skipped on both passes.
		if prev != nil {
			for _, item := range prev.Items {
				if i, ok := index[item.ProductID]; ok {
					products[i].Stock += item.Quantity
				}
			}
		}
		for _, item := range inv.Items {
			if i, ok := index[item.ProductID]; ok {
				products[i].Stock -= item.Quantity
			}
		}
		if err := s.productRepo.ReplaceAllTx(tx, products); err != nil {
			return err
		}

		if err := s.repo.UpsertTx(tx, inv); err != nil {
			return err
		}

		return s.deriveSaleTx(tx, inv)
	})
}

// deriveSaleTx keeps the Sales collection a pure function of invoice status:
// a sale exists iff the invoice is Paid, and its amount mirrors the total.
// Exactly one of the four status×exists cases applies.
func (s *invoiceService) deriveSaleTx(tx *store.Tx, inv model.Invoice) error {
	sale, err := s.saleRepo.FindByInvoiceIDTx(tx, inv.ID)
	if err != nil {
		return err
	}
	switch {
	case inv.Status == model.StatusPaid && sale == nil:
		return s.saleRepo.AppendTx(tx, model.Sale{
			Date:      inv.Date.Format(model.SaleDateLayout),
			Amount:    inv.Total,
			InvoiceID: inv.ID,
		})
	case inv.Status == model.StatusUnpaid && sale != nil:
		return s.saleRepo.DeleteByInvoiceIDTx(tx, inv.ID)
	case inv.Status == model.StatusPaid && sale != nil:
		return s.saleRepo.UpdateAmountTx(tx, inv.ID, inv.Total)
	default: // Unpaid, no sale
		return nil
	}
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Delete(ctx context.Context, inv model.Invoice) error {
	return s.repo.Store().Update(func(tx *store.Tx) error {
		products, err := s.productRepo.ListTx(tx)
		if err != nil {
			return err
		}
		index := make(map[string]int, len(products))
		for i, p := range products {
			index[p.ID] = i
		}
		for _, item := range inv.Items {
			if i, ok := index[item.ProductID]; ok {
				products[i].Stock += item.Quantity
			}
		}
		if err := s.productRepo.ReplaceAllTx(tx, products); err != nil {
			return err
		}

		if err := s.repo.DeleteTx(tx, inv.ID); err != nil {
			return err
		}
		return s.saleRepo.DeleteByInvoiceIDTx(tx, inv.ID)
	})
}
