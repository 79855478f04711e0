package repository

import (
	"context"
	"errors"

	"zenith/internal/apperror"
	"zenith/internal/model"
	"zenith/internal/store"
)

const productsKey = "products"

// ProductRepository defines data access for the Products collection.
// Services depend on this interface, not on the store layout.
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error

	// Used inside store transactions — callers must pass the tx instance.
	// ReplaceAllTx writes the whole collection once, so a reversal plus
	// reapplication of stock lands as a single mutation.
	ListTx(tx *store.Tx) ([]model.Product, error)
	ReplaceAllTx(tx *store.Tx, products []model.Product) error

	// Store exposes the underlying store so services can open transactions.
	Store() *store.Store
}

type productRepo struct{ st *store.Store }

func NewProductRepository(st *store.Store) ProductRepository { return &productRepo{st: st} }

func (r *productRepo) List(_ context.Context) ([]model.Product, error) {
	return readProducts(r.st.Get)
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *productRepo) Create(_ context.Context, p *model.Product) error {
	return r.st.Update(func(tx *store.Tx) error {
		products, err := readProducts(tx.Get)
		if err != nil {
			return err
		}
		return tx.Set(productsKey, append(products, *p))
	})
}

func (r *productRepo) Update(_ context.Context, p *model.Product) error {
	return r.st.Update(func(tx *store.Tx) error {
		products, err := readProducts(tx.Get)
		if err != nil {
			return err
		}
		for i := range products {
			if products[i].ID == p.ID {
				products[i] = *p
				return tx.Set(productsKey, products)
			}
		}
		return apperror.ErrNotFound
	})
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.st.Update(func(tx *store.Tx) error {
		products, err := readProducts(tx.Get)
		if err != nil {
			return err
		}
		kept := products[:0]
		found := false
		for _, p := range products {
			if p.ID == id {
				found = true
				continue
			}
			kept = append(kept, p)
		}
		if !found {
			return apperror.ErrNotFound
		}
		return tx.Set(productsKey, kept)
	})
}

func (r *productRepo) ListTx(tx *store.Tx) ([]model.Product, error) {
	return readProducts(tx.Get)
}

func (r *productRepo) ReplaceAllTx(tx *store.Tx, products []model.Product) error {
	return tx.Set(productsKey, products)
}

func (r *productRepo) Store() *store.Store { return r.st }

func readProducts(get func(string, any) error) ([]model.Product, error) {
	var products []model.Product
	if err := get(productsKey, &products); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return products, nil
}
