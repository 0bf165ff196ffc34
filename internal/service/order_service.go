package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	ErrNoOrderItems = errors.New("no order items")
)

// OrderItemInput is one requested line item. Title, price and image are
// captured into the order exactly as submitted.
type OrderItemInput struct {
	ProductRef string
	Title      string
	Image      string
	Price      float64
	Quantity   int
}

// PlaceOrderInput carries the checkout payload. The price breakdown is
// stored as submitted by the client; it is not recomputed from the catalog.
type PlaceOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress json.RawMessage
	PaymentMethod   string
	ItemsPrice      float64
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
}

// OrderService defines the interface for order business logic
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	notifier    notify.StockNotifier
	strictStock bool
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService. When strictStock is
// true a stock-write failure aborts the remaining line items and surfaces the
// error; when false it is logged and the loop continues.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	notifier notify.StockNotifier,
	strictStock bool,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		notifier:    notifier,
		strictStock: strictStock,
		logger:      logger,
	}
}

// PlaceOrder persists a new order and consumes inventory for its line items.
//
// The order insert is all-or-nothing; the per-item stock adjustment that
// follows is best-effort and deliberately not transactional with it: an order
// can stand with zero, partial, or full inventory adjustment applied. Line
// items whose product reference does not resolve are skipped without failing
// the order. One stock-change notification is emitted per adjusted item, in
// line-item order, as each adjustment completes.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoOrderItems
	}

	now := time.Now()
	order := &domain.Order{
		ID:     uuid.New(),
		UserID: userID,
		Items: lo.Map(input.Items, func(item OrderItemInput, _ int) domain.OrderItem {
			return domain.OrderItem{
				ProductRef: item.ProductRef,
				Name:       item.Title,
				Image:      item.Image,
				Price:      item.Price,
				Quantity:   item.Quantity,
			}
		}),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		ItemsPrice:      input.ItemsPrice,
		TaxPrice:        input.TaxPrice,
		ShippingPrice:   input.ShippingPrice,
		TotalPrice:      input.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range input.Items {
		productID, err := uuid.Parse(item.ProductRef)
		if err != nil {
			// Malformed or legacy reference: the order stands, inventory
			// bookkeeping for this item is skipped.
			s.logger.Warn("Skipping stock adjustment for unresolvable product reference",
				zap.String("order_id", order.ID.String()),
				zap.String("product_ref", item.ProductRef),
			)
			continue
		}

		newStock, err := s.productRepo.DecrementStock(ctx, productID, item.Quantity)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				s.logger.Warn("Skipping stock adjustment for unknown product",
					zap.String("order_id", order.ID.String()),
					zap.String("product_id", productID.String()),
				)
				continue
			}

			if s.strictStock {
				return nil, fmt.Errorf("failed to adjust stock for product %s: %w", productID, err)
			}

			s.logger.Error("Stock adjustment failed, continuing with remaining items",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
			continue
		}

		if err := s.notifier.PublishStockChange(ctx, notify.StockChange{
			ProductID: productID.String(),
			Stock:     newStock,
		}); err != nil {
			// Broadcast is fire-and-forget; a failed publish never fails the order.
			s.logger.Error("Failed to publish stock change",
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

// GetOrder retrieves an order by ID
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListUserOrders retrieves all orders owned by a user
func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
