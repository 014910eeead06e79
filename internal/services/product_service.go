package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
	log  *slog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, log *slog.Logger) *ProductService {
	return &ProductService{
		repo: repo,
		log:  log,
	}
}

// CreateProduct stores a new product. Price and stock may be zero but not negative.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if strings.TrimSpace(product.Name) == "" || strings.TrimSpace(product.Category) == "" {
		return ErrMissingFields
	}
	if product.Price < 0 || product.Stock < 0 {
		return ErrMissingFields
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.log.InfoContext(ctx, "product created", "product_id", product.ID, "has_image", product.ProductImage != "")
	return nil
}

// ListProducts returns one page of products and the total count.
func (s *ProductService) ListProducts(ctx context.Context, page Page) ([]models.Product, int64, error) {
	products, err := s.repo.List(ctx, page.Skip(), page.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	return products, total, nil
}
