// internal/domain/cart/repository.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Repository is the durable cart store. Load returns (nil, nil) when no cart
// exists for the session; the service treats that as an empty cart rather
// than an error.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisRepository persists carts as JSON snapshots in Redis, one key per
// storefront session.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed cart repository
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// Load retrieves the cart snapshot for a session
func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required")
	}

	data, err := r.client.Get(ctx, cartKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &cart, nil
}

// Save writes the full cart snapshot, refreshing its expiry
func (r *RedisRepository) Save(ctx context.Context, cart *Cart) error {
	if cart.SessionID == "" {
		return fmt.Errorf("session ID required")
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	return r.client.Set(ctx, cartKey(cart.SessionID), data, r.ttl).Err()
}

// Clear removes the cart snapshot for a session
func (r *RedisRepository) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cartKey(sessionID)).Err()
}

// MemoryRepository is an in-process cart store used by tests and by the
// storefront's reset mode, which starts empty and does not persist across
// restarts.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewMemoryRepository creates an empty in-memory cart repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[string]*Cart),
	}
}

// Load retrieves the cart for a session
func (r *MemoryRepository) Load(_ context.Context, sessionID string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[sessionID]
	if !ok {
		return nil, nil
	}

	// Round-trip through JSON so callers never share state with the store
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, err
	}
	var copied Cart
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}

// Save stores the cart snapshot
func (r *MemoryRepository) Save(_ context.Context, cart *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	var copied Cart
	if err := json.Unmarshal(data, &copied); err != nil {
		return err
	}

	r.carts[cart.SessionID] = &copied
	return nil
}

// Clear removes the cart for a session
func (r *MemoryRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, sessionID)
	return nil
}
