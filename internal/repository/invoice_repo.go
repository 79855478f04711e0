package repository

import (
	"context"
	"errors"

	"zenith/internal/apperror"
	"zenith/internal/model"
	"zenith/internal/store"
)

const invoicesKey = "invoices"

// InvoiceRepository defines data access for the Invoices collection.
// All writes happen inside a store transaction because an invoice write is
// always accompanied by stock and sales mutations.
type InvoiceRepository interface {
	List(ctx context.Context) ([]model.Invoice, error)
	FindByID(ctx context.Context, id string) (*model.Invoice, error)

	// UpsertTx replaces the invoice in place when the id exists, preserving
	// its position in the sequence, and appends it otherwise.
	UpsertTx(tx *store.Tx, inv model.Invoice) error
	DeleteTx(tx *store.Tx, id string) error

	Store() *store.Store
}

type invoiceRepo struct{ st *store.Store }

func NewInvoiceRepository(st *store.Store) InvoiceRepository { return &invoiceRepo{st: st} }

func (r *invoiceRepo) List(_ context.Context) ([]model.Invoice, error) {
	return readInvoices(r.st.Get)
}

func (r *invoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	invoices, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		if invoices[i].ID == id {
			return &invoices[i], nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *invoiceRepo) UpsertTx(tx *store.Tx, inv model.Invoice) error {
	invoices, err := readInvoices(tx.Get)
	if err != nil {
		return err
	}
	for i := range invoices {
		if invoices[i].ID == inv.ID {
			invoices[i] = inv
			return tx.Set(invoicesKey, invoices)
		}
	}
	return tx.Set(invoicesKey, append(invoices, inv))
}

func (r *invoiceRepo) DeleteTx(tx *store.Tx, id string) error {
	invoices, err := readInvoices(tx.Get)
	if err != nil {
		return err
	}
	kept := invoices[:0]
	for _, inv := range invoices {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	return tx.Set(invoicesKey, kept)
}

func (r *invoiceRepo) Store() *store.Store { return r.st }

func readInvoices(get func(string, any) error) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := get(invoicesKey, &invoices); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return invoices, nil
}
