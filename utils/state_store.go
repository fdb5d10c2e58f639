package utils

import (
	"sync"
	"time"
)

const oauthStateKey = "oauth:state:"

var (
	localStates   = map[string]time.Time{}
	localStatesMu sync.Mutex
)

// SaveState records a one-time OAuth state token. Redis is the primary store
// so state survives restarts; the local map only covers the redis-down case.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	ctx, cancel := cacheCtx()
	defer cancel()
	if err := GetRedis().Set(ctx, oauthStateKey+state, "1", ttl).Err(); err == nil {
		return
	}
	localStatesMu.Lock()
	localStates[state] = time.Now().Add(ttl)
	localStatesMu.Unlock()
}

// ConsumeState atomically checks and deletes a state token. Each token is
// valid for exactly one callback.
func ConsumeState(state string) bool {
	ctx, cancel := cacheCtx()
	defer cancel()
	if v, err := GetRedis().GetDel(ctx, oauthStateKey+state).Result(); err == nil {
		return v != ""
	}
	localStatesMu.Lock()
	deadline, ok := localStates[state]
	delete(localStates, state)
	localStatesMu.Unlock()
	return ok && time.Now().Before(deadline)
}
