package replystore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/replyflow/replyflow/internal/cache"
	"github.com/replyflow/replyflow/internal/models"
)

// RedisAdapter mirrors rule lists into redis so they survive process
// restarts.
type RedisAdapter struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisAdapter creates a RedisAdapter. A non-positive ttl disables
// expiry.
func NewRedisAdapter(c *cache.Cache, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{cache: c, ttl: ttl}
}

func replyKey(igAccountID int) string {
	return "replystore:" + strconv.Itoa(igAccountID)
}

// Load reads the mirrored rule list.
func (a *RedisAdapter) Load(ctx context.Context, igAccountID int) ([]models.Reply, bool, error) {
	var rules []models.Reply
	found, err := a.cache.Get(ctx, replyKey(igAccountID), &rules)
	if err != nil {
		return nil, false, fmt.Errorf("replystore.redis.Load: %w", err)
	}
	return rules, found, nil
}

// Save writes the rule list mirror.
func (a *RedisAdapter) Save(ctx context.Context, igAccountID int, rules []models.Reply) error {
	if err := a.cache.Set(ctx, replyKey(igAccountID), rules, a.ttl); err != nil {
		return fmt.Errorf("replystore.redis.Save: %w", err)
	}
	return nil
}

// MemoryAdapter keeps mirrors in a map; used by tests.
type MemoryAdapter struct {
	mu   sync.RWMutex
	data map[int][]models.Reply
}

// NewMemoryAdapter creates an empty MemoryAdapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{data: make(map[int][]models.Reply)}
}

// Load reads the stored rule list.
func (a *MemoryAdapter) Load(_ context.Context, igAccountID int) ([]models.Reply, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rules, ok := a.data[igAccountID]
	return rules, ok, nil
}

// Save stores the rule list.
func (a *MemoryAdapter) Save(_ context.Context, igAccountID int, rules []models.Reply) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[igAccountID] = rules
	return nil
}
