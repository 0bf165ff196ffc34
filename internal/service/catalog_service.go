package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

const (
	// AllCategories is the sentinel clients use to mean "no category filter"
	AllCategories = "All"

	DefaultPage     = 1
	DefaultPageSize = 100
	MaxPageSize     = 200
)

// ListProductsInput narrows and pages a catalog listing. Zero values
// fall back to the defaults.
type ListProductsInput struct {
	Category  string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ProductInput carries the writable attributes of a product
type ProductInput struct {
	Title              string
	Description        string
	Category           string
	Brand              string
	Price              float64
	DiscountPercentage float64
	Stock              int
	Thumbnail          string
	Images             []string
	Rating             float64
	RatingCount        int
}

// CatalogService defines the interface for catalog read and admin write logic
type CatalogService interface {
	ListProducts(ctx context.Context, input ListProductsInput) ([]*domain.Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// ListProducts retrieves a page of the catalog. The "All" category sentinel
// and an empty category both mean no category filter.
func (s *catalogService) ListProducts(ctx context.Context, input ListProductsInput) ([]*domain.Product, int, error) {
	filter := repository.ProductFilter{
		Search:   input.Search,
		SortBy:   input.SortBy,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	if !strings.EqualFold(input.Category, AllCategories) {
		filter.Category = input.Category
	}

	if strings.EqualFold(input.SortOrder, "asc") {
		filter.SortOrder = repository.SortOrderAsc
	} else {
		filter.SortOrder = repository.SortOrderDesc
	}

	if filter.Page < 1 {
		filter.Page = DefaultPage
	}
	if filter.PageSize < 1 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// GetProduct retrieves a single product by ID
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Categories retrieves the distinct categories, prefixed with the "All" sentinel
func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return append([]string{AllCategories}, categories...), nil
}

// CreateProduct creates a new catalog entry
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:                 uuid.New(),
		Title:              input.Title,
		Description:        input.Description,
		Category:           input.Category,
		Brand:              input.Brand,
		Price:              input.Price,
		DiscountPercentage: input.DiscountPercentage,
		Stock:              input.Stock,
		Thumbnail:          input.Thumbnail,
		Images:             input.Images,
		Rating:             input.Rating,
		RatingCount:        input.RatingCount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct replaces the writable attributes of an existing product
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	product.Title = input.Title
	product.Description = input.Description
	product.Category = input.Category
	product.Brand = input.Brand
	product.Price = input.Price
	product.DiscountPercentage = input.DiscountPercentage
	product.Stock = input.Stock
	product.Thumbnail = input.Thumbnail
	product.Images = input.Images
	product.Rating = input.Rating
	product.RatingCount = input.RatingCount
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
