package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chaudhary-hadi27/usman-fast-food/models"
)

const menuCacheKey = "menu:all"

// Cache fronts order tracking lookups and the public menu with Redis.
// Every method degrades gracefully: a cache failure is reported but callers
// treat it as a miss, never as a request failure.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func orderCacheKey(orderID string) string {
	return "order:" + orderID
}

// GetOrder returns the cached order, or (nil, nil) on a miss.
func (c *Cache) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	data, err := c.client.Get(ctx, orderCacheKey(orderID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Cache) SetOrder(ctx context.Context, order *models.Order, ttl time.Duration) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, orderCacheKey(order.OrderID), data, ttl).Err()
}

// InvalidateOrder drops the cached copy after a status transition.
func (c *Cache) InvalidateOrder(ctx context.Context, orderID string) error {
	return c.client.Del(ctx, orderCacheKey(orderID)).Err()
}

// GetMenu returns the cached menu listing, or (nil, nil) on a miss.
func (c *Cache) GetMenu(ctx context.Context) ([]models.MenuItem, error) {
	data, err := c.client.Get(ctx, menuCacheKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.MenuItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Cache) SetMenu(ctx context.Context, items []models.MenuItem, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, menuCacheKey, data, ttl).Err()
}

// InvalidateMenu drops the menu cache after admin CRUD.
func (c *Cache) InvalidateMenu(ctx context.Context) error {
	return c.client.Del(ctx, menuCacheKey).Err()
}
