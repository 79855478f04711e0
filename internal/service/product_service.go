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

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error)
	// Delete removes the product unconditionally; destructive confirmation
	// is the presentation layer's gate. Invoices referencing the product
	// keep their snapshots and stop moving its stock.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error)
}

type productService struct {
	repo              repository.ProductRepository
	lowStockThreshold int
	now               func() time.Time
}

func NewProductService(repo repository.ProductRepository, lowStockThreshold int) ProductService {
	return &productService{repo: repo, lowStockThreshold: lowStockThreshold, now: time.Now}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*model.Product, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	p := &model.Product{
		ID:        uuid.NewString(),
		Name:      req.Name,
		SKU:       req.SKU,
		Stock:     req.Stock,
		Price:     req.Price,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*model.Product, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.SKU != nil {
		p.SKU = *req.SKU
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *productService) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(filter.Search)
	result := make([]model.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		if filter.LowStockOnly && p.Stock > s.lowStockThreshold {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}
