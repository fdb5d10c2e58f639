package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/streakmate/streakmate/config"
)

// Registration throttling keyed by client IP, backed by Redis. Best-effort:
// when Redis is unavailable the checks pass, so an outage never blocks
// sign-ups.

// RegistrationCooldownTry enforces a short gap between attempts from one IP.
// Returns false while the IP is cooling down.
func RegistrationCooldownTry(ip string) bool {
	rc := GetRedis()
	if rc == nil {
		return true
	}
	cfg := config.Get()
	cooldown := time.Duration(cfg.RegisterAttemptCooldownSec) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := rc.SetNX(ctx, "register:cooldown:"+ip, "1", cooldown).Result()
	if err != nil {
		return true
	}
	return ok
}

// RegistrationDailyLimitCheck reports whether the IP is still under today's
// registration cap.
func RegistrationDailyLimitCheck(ip string) bool {
	rc := GetRedis()
	if rc == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := rc.Get(ctx, registerDailyKey(ip)).Result()
	if err != nil {
		return true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return true
	}
	return n < config.Get().RegisterMaxPerIPPerDay
}

// RegistrationDailyIncrement records one successful registration for the IP.
func RegistrationDailyIncrement(ip string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := registerDailyKey(ip)
	n, err := rc.Incr(ctx, key).Result()
	if err == nil && n == 1 {
		// Expire at local midnight so the cap resets daily.
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
		_ = rc.ExpireAt(ctx, key, midnight).Err()
	}
}

func registerDailyKey(ip string) string {
	return "register:daily:" + ip + ":" + time.Now().Format("2006-01-02")
}
