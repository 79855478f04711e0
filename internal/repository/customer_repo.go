package repository

import (
	"context"
	"errors"

	"zenith/internal/apperror"
	"zenith/internal/model"
	"zenith/internal/store"
)

const customersKey = "customers"

type CustomerRepository interface {
	List(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	// Delete does not cascade: invoices keep their customerId and the
	// denormalized customerName snapshot.
	Delete(ctx context.Context, id string) error

	Store() *store.Store
}

type customerRepo struct{ st *store.Store }

func NewCustomerRepository(st *store.Store) CustomerRepository { return &customerRepo{st: st} }

func (r *customerRepo) List(_ context.Context) ([]model.Customer, error) {
	return readCustomers(r.st.Get)
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	customers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if customers[i].ID == id {
			return &customers[i], nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *customerRepo) Create(_ context.Context, c *model.Customer) error {
	return r.st.Update(func(tx *store.Tx) error {
		customers, err := readCustomers(tx.Get)
		if err != nil {
			return err
		}
		return tx.Set(customersKey, append(customers, *c))
	})
}

func (r *customerRepo) Update(_ context.Context, c *model.Customer) error {
	return r.st.Update(func(tx *store.Tx) error {
		customers, err := readCustomers(tx.Get)
		if err != nil {
			return err
		}
		for i := range customers {
			if customers[i].ID == c.ID {
				customers[i] = *c
				return tx.Set(customersKey, customers)
			}
		}
		return apperror.ErrNotFound
	})
}

func (r *customerRepo) Delete(_ context.Context, id string) error {
	return r.st.Update(func(tx *store.Tx) error {
		customers, err := readCustomers(tx.Get)
		if err != nil {
			return err
		}
		kept := customers[:0]
		found := false
		for _, c := range customers {
			if c.ID == id {
				found = true
				continue
			}
			kept = append(kept, c)
		}
		if !found {
			return apperror.ErrNotFound
		}
		return tx.Set(customersKey, kept)
	})
}

func (r *customerRepo) Store() *store.Store { return r.st }

func readCustomers(get func(string, any) error) ([]model.Customer, error) {
	var customers []model.Customer
	if err := get(customersKey, &customers); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return customers, nil
}
