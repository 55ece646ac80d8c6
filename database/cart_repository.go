package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chaudhary-hadi27/usman-fast-food/models"
)

// CartRepository stores each customer's cart draft in a per-session Redis
// slot. Carts survive page reloads, not deployments of the customer's browser;
// a TTL keeps abandoned carts from accumulating.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CartRepository) cartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// GetCart loads the stored cart, or (nil, nil) when no slot exists.
func (r *CartRepository) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.cartKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart overwrites the slot with the current item list.
func (r *CartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.cartKey(cart.SessionID), data, r.ttl).Err()
}

// DeleteCart drops the slot entirely.
func (r *CartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.cartKey(sessionID)).Err()
}

// Idempotency helpers for order submission replays.
func (r *CartRepository) idemKey(key string) string {
	return "idem:order:" + key
}

// GetIdempotency returns the order id previously recorded under key, or ""
// when the key is unused.
func (r *CartRepository) GetIdempotency(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.idemKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *CartRepository) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.idemKey(key), orderID, ttl).Err()
}
