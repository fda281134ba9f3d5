package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// PendingCODRepository defines the interface for the transient
// cash-on-delivery pre-order store. Records expire on their own; Delete is
// for promotion to a real order.
type PendingCODRepository interface {
	Save(ctx context.Context, pending *models.PendingCODOrder) error
	Get(ctx context.Context, id string) (*models.PendingCODOrder, error)
	Delete(ctx context.Context, id string) error
}

// RedisPendingCODRepository stores pending COD orders in Redis, with the key
// TTL matching the code expiry.
type RedisPendingCODRepository struct {
	client *redis.Client
}

// NewRedisPendingCODRepository creates a new instance of
// RedisPendingCODRepository.
func NewRedisPendingCODRepository(client *redis.Client) *RedisPendingCODRepository {
	return &RedisPendingCODRepository{
		client: client,
	}
}

func pendingCODKey(id string) string {
	return "cod:pending:" + id
}

// Save stores a pending COD order with a TTL derived from its expiry. Saving
// an already-expired record is rejected.
func (r *RedisPendingCODRepository) Save(ctx context.Context, pending *models.PendingCODOrder) error {
	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pending COD order %s already expired", pending.ID)
	}
	body, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending COD order: %w", err)
	}
	if err := r.client.Set(ctx, pendingCODKey(pending.ID), body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending COD order %s: %w", pending.ID, err)
	}
	return nil
}

// Get retrieves a pending COD order by ID. An expired record is
// indistinguishable from one that never existed.
func (r *RedisPendingCODRepository) Get(ctx context.Context, id string) (*models.PendingCODOrder, error) {
	body, err := r.client.Get(ctx, pendingCODKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("pending COD order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending COD order %s: %w", id, err)
	}
	var pending models.PendingCODOrder
	if err := json.Unmarshal(body, &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending COD order %s: %w", id, err)
	}
	return &pending, nil
}

// Delete removes a pending COD order, typically after promotion.
func (r *RedisPendingCODRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, pendingCODKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending COD order %s: %w", id, err)
	}
	return nil
}
