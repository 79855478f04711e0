package service

import (
	"context"
	"strings"
	"time"

	"zenith/internal/dto"
	"zenith/internal/model"
	"zenith/internal/repository"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error)
	Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error)
	// Delete does not cascade to invoices; they keep the name snapshot and
	// a possibly dangling customerId.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
	now  func() time.Time
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo, now: time.Now}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*model.Customer, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	c := &model.Customer{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*model.Customer, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *customerService) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(filter.Search)
	if search == "" {
		return customers, nil
	}
	result := make([]model.Customer, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), search) ||
			strings.Contains(strings.ToLower(c.Email), search) ||
			strings.Contains(strings.ToLower(c.Phone), search) {
			result = append(result, c)
		}
	}
	return result, nil
}
