package auth

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist is the registry of revoked token strings.  Entries are keyed by
// the exact serialized token; revoking one token never affects other tokens
// issued to the same subject.  Implementations must be safe for concurrent
// use.
type Blacklist interface {
	// Add registers a token as revoked.  ttl is the token's remaining
	// validity; implementations may use it to expire the entry.
	Add(ctx context.Context, token string, ttl time.Duration) error
	// Contains reports whether the token has been revoked.
	Contains(ctx context.Context, token string) bool
}

// MemoryBlacklist is the process-local default: a mutex-guarded set of token
// strings.  It is append-only and never pruned, so entries accumulate for the
// process lifetime and a restart clears all revocations.  Both are accepted
// limitations of the in-memory variant; deployments that need durability or
// bounded growth use RedisBlacklist.
type MemoryBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewMemoryBlacklist returns an empty in-memory blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]struct{})}
}

// Add registers the token.  The ttl is ignored; see the type comment.
func (b *MemoryBlacklist) Add(_ context.Context, token string, _ time.Duration) error {
	b.mu.Lock()
	b.tokens[token] = struct{}{}
	b.mu.Unlock()
	return nil
}

// Contains reports whether the token was revoked in this process.
func (b *MemoryBlacklist) Contains(_ context.Context, token string) bool {
	b.mu.RLock()
	_, ok := b.tokens[token]
	b.mu.RUnlock()
	return ok
}

// RedisBlacklist stores revocations in Redis with a TTL equal to the token's
// remaining validity, so entries disappear exactly when the token would have
// expired anyway.  Revocations survive restarts and are shared between
// replicas.
type RedisBlacklist struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBlacklist returns a blacklist backed by the given client.  The
// client must be non-nil; callers that could not reach Redis at startup fall
// back to NewMemoryBlacklist instead.
func NewRedisBlacklist(rdb *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb, prefix: "revoked:"}
}

// Add stores the token with the remaining-validity TTL.  A non-positive ttl
// is clamped to one second so the entry is visible at least briefly.
func (b *RedisBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	return b.rdb.Set(ctx, b.prefix+token, "1", ttl).Err()
}

// Contains checks Redis for the token.  A Redis failure is logged and treated
// as "not revoked" so that an outage of the blacklist store does not lock
// every session out; expiry checking still bounds the damage to the token
// lifetime.
func (b *RedisBlacklist) Contains(ctx context.Context, token string) bool {
	n, err := b.rdb.Exists(ctx, b.prefix+token).Result()
	if err != nil {
		log.Printf("auth: blacklist lookup failed: %v", err)
		return false
	}
	return n > 0
}
