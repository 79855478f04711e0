package repository

import (
	"context"
	"errors"

	"zenith/internal/apperror"
	"zenith/internal/model"
	"zenith/internal/store"
)

const usersKey = "users"

type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error

	Store() *store.Store
}

type userRepo struct{ st *store.Store }

func NewUserRepository(st *store.Store) UserRepository { return &userRepo{st: st} }

func (r *userRepo) List(_ context.Context) ([]model.User, error) {
	return readUsers(r.st.Get)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	return r.st.Update(func(tx *store.Tx) error {
		users, err := readUsers(tx.Get)
		if err != nil {
			return err
		}
		return tx.Set(usersKey, append(users, *u))
	})
}

func (r *userRepo) Store() *store.Store { return r.st }

func readUsers(get func(string, any) error) ([]model.User, error) {
	var users []model.User
	if err := get(usersKey, &users); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return users, nil
}
