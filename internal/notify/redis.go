package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisNotifier broadcasts stock changes over a Redis pub/sub channel. Redis
// pub/sub delivers only to subscribers connected at publish time, which is
// exactly the fan-out contract: no queue, no replay, no acknowledgment.
type redisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a StockNotifier publishing on StockChannel.
// The Redis client is owned by the caller.
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) StockNotifier {
	return &redisNotifier{
		client: client,
		logger: logger,
	}
}

func (n *redisNotifier) PublishStockChange(ctx context.Context, change StockChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode stock change: %w", err)
	}

	if err := n.client.Publish(ctx, StockChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish stock change: %w", err)
	}

	n.logger.Debug("Published stock change",
		zap.String("product_id", change.ProductID),
		zap.Int("stock", change.Stock),
	)

	return nil
}

func (n *redisNotifier) Close() error {
	return nil
}

// Subscribe opens a subscription to the stock-change channel. Each caller
// gets its own connection and receives only events published while it is
// subscribed. The caller must close the returned PubSub.
func Subscribe(ctx context.Context, client *redis.Client) *redis.PubSub {
	return client.Subscribe(ctx, StockChannel)
}
