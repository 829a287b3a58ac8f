package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// DefaultLowStockThreshold mirrors the stock level under which products are
// surfaced for reordering.
const DefaultLowStockThreshold = 10

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	if err := validateForm(form); err != nil {
		return Product{}, err
	}
	product := Product{
		Barcode:  strings.TrimSpace(form.Barcode),
		Name:     strings.TrimSpace(form.Name),
		Price:    form.Price,
		Stock:    form.Stock,
		Category: form.Category,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	updates := make(map[string]interface{})
	if req.Barcode != nil {
		if strings.TrimSpace(*req.Barcode) == "" {
			return Product{}, fmt.Errorf("%w: product barcode is required", shared.ErrValidation)
		}
		updates["barcode"] = strings.TrimSpace(*req.Barcode)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return Product{}, fmt.Errorf("%w: product name is required", shared.ErrValidation)
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return Product{}, fmt.Errorf("%w: price must be >= 0", shared.ErrValidation)
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	return s.repo.GetByBarcode(ctx, barcode)
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	if strings.TrimSpace(query) == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.repo.ByCategory(ctx, category)
}

func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.repo.LowStock(ctx, threshold)
}

// AdjustStock applies a direct stock correction outside of checkout or the
// ledger, e.g. from the product edit screen.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (Product, error) {
	if delta == 0 {
		return Product{}, fmt.Errorf("%w: stock delta must be non zero", shared.ErrValidation)
	}
	ok, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return Product{}, fmt.Errorf("adjust stock: %w", err)
	}
	if !ok {
		return Product{}, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}

func validateForm(form ProductForm) error {
	if strings.TrimSpace(form.Barcode) == "" {
		return fmt.Errorf("%w: product barcode is required", shared.ErrValidation)
	}
	if strings.TrimSpace(form.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if form.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", shared.ErrValidation)
	}
	return nil
}
