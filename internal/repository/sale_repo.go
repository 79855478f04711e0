package repository

import (
	"context"
	"errors"

	"zenith/internal/model"
	"zenith/internal/store"

	"github.com/shopspring/decimal"
)

const salesKey = "sales"

// SaleRepository defines data access for the derived Sales collection.
// The Tx methods map one-to-one onto the status×exists derivation cases of
// the invoice reconciliation; nothing else writes sales.
type SaleRepository interface {
	List(ctx context.Context) ([]model.Sale, error)

	FindByInvoiceIDTx(tx *store.Tx, invoiceID string) (*model.Sale, error)
	AppendTx(tx *store.Tx, sale model.Sale) error
	// UpdateAmountTx rewrites the amount of the sale for invoiceID,
	// leaving date and invoiceId untouched.
	UpdateAmountTx(tx *store.Tx, invoiceID string, amount decimal.Decimal) error
	DeleteByInvoiceIDTx(tx *store.Tx, invoiceID string) error

	Store() *store.Store
}

type saleRepo struct{ st *store.Store }

func NewSaleRepository(st *store.Store) SaleRepository { return &saleRepo{st: st} }

func (r *saleRepo) List(_ context.Context) ([]model.Sale, error) {
	return readSales(r.st.Get)
}

func (r *saleRepo) FindByInvoiceIDTx(tx *store.Tx, invoiceID string) (*model.Sale, error) {
	sales, err := readSales(tx.Get)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		if sales[i].InvoiceID == invoiceID {
			return &sales[i], nil
		}
	}
	return nil, nil
}

func (r *saleRepo) AppendTx(tx *store.Tx, sale model.Sale) error {
	sales, err := readSales(tx.Get)
	if err != nil {
		return err
	}
	return tx.Set(salesKey, append(sales, sale))
}

func (r *saleRepo) UpdateAmountTx(tx *store.Tx, invoiceID string, amount decimal.Decimal) error {
	sales, err := readSales(tx.Get)
	if err != nil {
		return err
	}
	for i := range sales {
		if sales[i].InvoiceID == invoiceID {
			sales[i].Amount = amount
		}
	}
	return tx.Set(salesKey, sales)
}

func (r *saleRepo) DeleteByInvoiceIDTx(tx *store.Tx, invoiceID string) error {
	sales, err := readSales(tx.Get)
	if err != nil {
		return err
	}
	kept := sales[:0]
	for _, s := range sales {
		if s.InvoiceID != invoiceID {
			kept = append(kept, s)
		}
	}
	return tx.Set(salesKey, kept)
}

func (r *saleRepo) Store() *store.Store { return r.st }

func readSales(get func(string, any) error) ([]model.Sale, error) {
	var sales []model.Sale
	if err := get(salesKey, &sales); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sales, nil
}
