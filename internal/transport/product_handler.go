package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ProductRequest represents an administrative product create/update payload
type ProductRequest struct {
	Title              string   `json:"title" validate:"required"`
	Description        string   `json:"description" validate:"required"`
	Category           string   `json:"category" validate:"required"`
	Brand              string   `json:"brand" validate:"required"`
	Price              float64  `json:"price" validate:"gte=0"`
	DiscountPercentage float64  `json:"discountPercentage" validate:"gte=0,lte=100"`
	Stock              int      `json:"stock" validate:"gte=0"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
	Rating             float64  `json:"rating" validate:"gte=0,lte=5"`
	RatingCount        int      `json:"ratingCount" validate:"gte=0"`
}

// RatingResponse is the rating summary clients render
type RatingResponse struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// ProductResponse is the catalog wire format, including the derived fields
// clients rely on (inStock, discount, image)
type ProductResponse struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Brand         string         `json:"brand"`
	Price         float64        `json:"price"`
	Discount      float64        `json:"discount"`
	OriginalPrice float64        `json:"originalPrice"`
	Image         string         `json:"image"`
	Images        []string       `json:"images"`
	Stock         int            `json:"stock"`
	InStock       bool           `json:"inStock"`
	Rating        RatingResponse `json:"rating"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Pagination describes the page a listing response covers
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ProductListResponse is the catalog listing envelope
type ProductListResponse struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
	Pagination Pagination        `json:"pagination"`
	Data       []ProductResponse `json:"data"`
}

// ProductItemResponse wraps a single product document
type ProductItemResponse struct {
	Success bool            `json:"success"`
	Data    ProductResponse `json:"data"`
}

// CategoriesResponse wraps the category list
type CategoriesResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers catalog routes; reads are public, writes are admin-only
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.Get("/category/{category}", h.ListByCategory)
		r.Get("/{id}", h.GetByID)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// sortFields maps client sort keys to catalog sort fields
var sortFields = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"price":     "price",
	"stock":     "stock",
	"rating":    "rating",
}

// List returns a filtered, sorted, paginated catalog page
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := service.ListProductsInput{
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		SortBy:    sortFields[q.Get("sortBy")],
		SortOrder: q.Get("sortOrder"),
		Page:      intQueryParam(q.Get("page"), service.DefaultPage),
		PageSize:  intQueryParam(q.Get("limit"), service.DefaultPageSize),
	}

	h.respondWithListing(w, r, input)
}

// ListByCategory returns a catalog page filtered to one category
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := service.ListProductsInput{
		Category: chi.URLParam(r, "category"),
		Page:     intQueryParam(q.Get("page"), service.DefaultPage),
		PageSize: intQueryParam(q.Get("limit"), 50),
	}

	h.respondWithListing(w, r, input)
}

func (h *ProductHandler) respondWithListing(w http.ResponseWriter, r *http.Request, input service.ListProductsInput) {
	products, total, err := h.catalogService.ListProducts(r.Context(), input)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	data := lo.Map(products, func(p *domain.Product, _ int) ProductResponse {
		return toProductResponse(p)
	})

	page := input.Page
	if page < 1 {
		page = service.DefaultPage
	}
	limit := input.PageSize
	if limit < 1 {
		limit = service.DefaultPageSize
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Success: true,
		Count:   len(data),
		Total:   total,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
		Data: data,
	})
}

// GetByID returns a single product document
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.String("product_id", productID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductItemResponse{
		Success: true,
		Data:    toProductResponse(product),
	})
}

// Categories returns the distinct category list, prefixed with "All"
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{
		Success: true,
		Data:    categories,
	})
}

// Create handles administrative product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), toProductInput(req))
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, ProductItemResponse{
		Success: true,
		Data:    toProductResponse(product),
	})
}

// Update handles administrative product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), productID, toProductInput(req))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to update product", zap.String("product_id", productID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductItemResponse{
		Success: true,
		Data:    toProductResponse(product),
	})
}

// Delete handles administrative product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.String("product_id", productID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", productID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "product deleted successfully",
	})
}

func toProductInput(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Brand:              req.Brand,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		Thumbnail:          req.Thumbnail,
		Images:             req.Images,
		Rating:             req.Rating,
		RatingCount:        req.RatingCount,
	}
}

func toProductResponse(p *domain.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}

	return ProductResponse{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Brand:         p.Brand,
		Price:         p.Price,
		Discount:      p.DiscountPercentage,
		OriginalPrice: p.Price,
		Image:         p.Thumbnail,
		Images:        images,
		Stock:         p.Stock,
		InStock:       p.InStock(),
		Rating: RatingResponse{
			Rate:  p.Rating,
			Count: p.RatingCount,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
