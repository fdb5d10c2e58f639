package utils

import (
	"sync"
	"time"
)

const blacklistKey = "jwt:blacklist:"

var (
	localRevoked   = map[string]time.Time{}
	localRevokedMu sync.RWMutex
)

// BlacklistToken revokes a token until its natural expiry. Redis is the
// primary store; the local map covers the redis-down case for this process.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	if err := GetRedis().Set(ctx, blacklistKey+token, "1", ttl).Err(); err == nil {
		return
	}
	localRevokedMu.Lock()
	localRevoked[token] = expiresAt
	localRevokedMu.Unlock()
}

// IsTokenBlacklisted reports whether a token was revoked by logout. Redis
// errors fail open so an outage cannot lock every user out.
func IsTokenBlacklisted(token string) bool {
	ctx, cancel := cacheCtx()
	defer cancel()
	if n, err := GetRedis().Exists(ctx, blacklistKey+token).Result(); err == nil && n > 0 {
		return true
	}
	localRevokedMu.RLock()
	deadline, ok := localRevoked[token]
	localRevokedMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(deadline) {
		localRevokedMu.Lock()
		delete(localRevoked, token)
		localRevokedMu.Unlock()
		return false
	}
	return true
}
