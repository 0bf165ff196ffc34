package notify

import (
	"context"

	"go.uber.org/zap"
)

// StockChannel is the pub/sub channel stock-change events are broadcast on.
// The channel name doubles as the SSE event name seen by clients.
const StockChannel = "product:update"

// StockChange is one stock-change event: the product whose stock moved and
// its new level.
type StockChange struct {
	ProductID string `json:"id"`
	Stock     int    `json:"stock"`
}

// StockNotifier broadcasts stock changes to all currently connected
// observers. Delivery is at-most-once and fire-and-forget: clients that are
// disconnected at emission time receive nothing, and nothing is replayed.
type StockNotifier interface {
	PublishStockChange(ctx context.Context, change StockChange) error
	Close() error
}

// noopNotifier swallows events when no pub/sub transport is configured
type noopNotifier struct {
	logger *zap.Logger
}

// NewNoopNotifier creates a notifier that drops all events
func NewNoopNotifier(logger *zap.Logger) StockNotifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) PublishStockChange(ctx context.Context, change StockChange) error {
	n.logger.Debug("Stock notifications disabled, dropping event",
		zap.String("product_id", change.ProductID),
		zap.Int("stock", change.Stock),
	)
	return nil
}

func (n *noopNotifier) Close() error {
	return nil
}
