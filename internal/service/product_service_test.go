package service

import (
	"context"
	"errors"
	"testing"

	"techstore/internal/domain"
	"techstore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products := make([]*domain.Product, 0, len(m.products))
	for _, product := range m.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.Brand != "" && product.Brand != filter.Brand {
			continue
		}
		if filter.Featured != nil && product.Featured != *filter.Featured {
			continue
		}
		products = append(products, product)
	}
	return products, len(products), nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	products := make([]*domain.Product, 0, len(m.products))
	for _, product := range m.products {
		products = append(products, product)
	}
	return products, len(products), nil
}

func (m *mockProductRepository) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	categories := []string{}
	for _, product := range m.products {
		if product.Category != "" && !seen[product.Category] {
			seen[product.Category] = true
			categories = append(categories, product.Category)
		}
	}
	return categories, nil
}

func (m *mockProductRepository) Brands(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	brands := []string{}
	for _, product := range m.products {
		if product.Brand != "" && !seen[product.Brand] {
			seen[product.Brand] = true
			brands = append(brands, product.Brand)
		}
	}
	return brands, nil
}

func catalogInput() ProductInput {
	return ProductInput{
		Name:        "ZenBook 14",
		Brand:       "Asus",
		Category:    "laptops",
		Processor:   "Intel Core i7",
		Price:       1299.99,
		Stock:       10,
		ImageURL:    "https://cdn.example.com/zenbook.jpg",
		Images:      []string{"https://cdn.example.com/zenbook-1.jpg"},
		Specs:       map[string]string{"ram": "16GB"},
		Description: "Thin and light laptop",
		Featured:    true,
	}
}

// Feature: storefront, Property 12: Catalog entries preserve admin input
func TestProductService_Create(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo, zap.NewNop())
	ctx := context.Background()

	t.Run("persists all catalog fields", func(t *testing.T) {
		product, err := svc.Create(ctx, catalogInput())
		if err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
		if product.ID == uuid.Nil {
			t.Error("expected a generated product ID")
		}
		if product.Name != "ZenBook 14" || product.Brand != "Asus" || product.Processor != "Intel Core i7" {
			t.Errorf("catalog fields not preserved: %+v", product)
		}
		if !product.Featured {
			t.Error("expected featured flag to be preserved")
		}
		stored, err := repo.FindByID(ctx, product.ID)
		if err != nil {
			t.Fatalf("product not stored: %v", err)
		}
		if stored.Specs["ram"] != "16GB" {
			t.Errorf("specs not stored, got %v", stored.Specs)
		}
	})

	t.Run("rejects non-positive prices", func(t *testing.T) {
		for _, price := range []float64{0, -1} {
			input := catalogInput()
			input.Price = price
			if _, err := svc.Create(ctx, input); !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("price %v: expected ErrInvalidPrice, got %v", price, err)
			}
		}
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		input := catalogInput()
		input.Stock = -1
		if _, err := svc.Create(ctx, input); !errors.Is(err, ErrInvalidStock) {
			t.Errorf("expected ErrInvalidStock, got %v", err)
		}
	})

	t.Run("zero stock is a valid out-of-stock listing", func(t *testing.T) {
		input := catalogInput()
		input.Stock = 0
		product, err := svc.Create(ctx, input)
		if err != nil {
			t.Fatalf("expected zero stock to be accepted, got %v", err)
		}
		if product.Stock != 0 {
			t.Errorf("expected stock 0, got %d", product.Stock)
		}
	})
}

func TestProductService_Update(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo, zap.NewNop())
	ctx := context.Background()

	product, err := svc.Create(ctx, catalogInput())
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	t.Run("replaces catalog fields", func(t *testing.T) {
		input := catalogInput()
		input.Name = "ZenBook 14 OLED"
		input.Price = 1499.99
		input.Featured = false

		updated, err := svc.Update(ctx, product.ID, input)
		if err != nil {
			t.Fatalf("failed to update product: %v", err)
		}
		if updated.Name != "ZenBook 14 OLED" || updated.Price != 1499.99 {
			t.Errorf("update not applied: %+v", updated)
		}
		if updated.Featured {
			t.Error("expected featured flag to be cleared")
		}
	})

	t.Run("validates before touching the repository", func(t *testing.T) {
		input := catalogInput()
		input.Price = -5
		if _, err := svc.Update(ctx, product.ID, input); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("expected ErrInvalidPrice, got %v", err)
		}
		stored, _ := repo.FindByID(ctx, product.ID)
		if stored.Price < 0 {
			t.Error("invalid price leaked into the repository")
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		if _, err := svc.Update(ctx, uuid.New(), catalogInput()); !errors.Is(err, repository.ErrProductNotFound) {
			t.Errorf("expected ErrProductNotFound, got %v", err)
		}
	})
}

func TestProductService_DeleteAndFacets(t *testing.T) {
	repo := newMockProductRepository()
	svc := NewProductService(repo, zap.NewNop())
	ctx := context.Background()

	laptop, err := svc.Create(ctx, catalogInput())
	if err != nil {
		t.Fatalf("failed to seed laptop: %v", err)
	}
	tablet := catalogInput()
	tablet.Name = "Galaxy Tab S9"
	tablet.Brand = "Samsung"
	tablet.Category = "tablets"
	if _, err := svc.Create(ctx, tablet); err != nil {
		t.Fatalf("failed to seed tablet: %v", err)
	}

	t.Run("facets list distinct categories and brands", func(t *testing.T) {
		categories, brands, err := svc.Facets(ctx)
		if err != nil {
			t.Fatalf("failed to load facets: %v", err)
		}
		if len(categories) != 2 {
			t.Errorf("expected 2 categories, got %v", categories)
		}
		if len(brands) != 2 {
			t.Errorf("expected 2 brands, got %v", brands)
		}
	})

	t.Run("delete removes the product", func(t *testing.T) {
		if err := svc.Delete(ctx, laptop.ID); err != nil {
			t.Fatalf("failed to delete product: %v", err)
		}
		if _, err := svc.Get(ctx, laptop.ID); !errors.Is(err, repository.ErrProductNotFound) {
			t.Errorf("expected ErrProductNotFound after delete, got %v", err)
		}
		if err := svc.Delete(ctx, laptop.ID); !errors.Is(err, repository.ErrProductNotFound) {
			t.Errorf("expected ErrProductNotFound on repeated delete, got %v", err)
		}
	})
}
