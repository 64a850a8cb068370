package auth

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/sha3"
)

const revocationKeyPrefix = "volunvibe:revoked:"

// RevocationList remembers tokens that were logged out before expiring.
type RevocationList interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// tokenDigest keys revocations by digest so raw tokens are never stored.
func tokenDigest(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MemoryRevocationList keeps revocations in process memory.
type MemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryRevocationList) Revoke(ctx context.Context, token string, until time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, expiry := range l.entries {
		if !expiry.After(now) {
			delete(l.entries, key)
		}
	}
	if until.After(now) {
		l.entries[tokenDigest(token)] = until
	}
	return nil
}

func (l *MemoryRevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.entries[tokenDigest(token)]
	return ok && expiry.After(l.now()), nil
}

// RedisRevocationList shares revocations between instances through Redis.
// Entries expire together with the token they revoke.
type RedisRevocationList struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client, now: time.Now}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := until.Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revocationKeyPrefix+tokenDigest(token), 1, ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := l.client.Exists(ctx, revocationKeyPrefix+tokenDigest(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
