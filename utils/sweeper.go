package utils

import (
	"context"
	"time"

	"github.com/streakmate/streakmate/services"
)

// StartWagerSweeper launches a background goroutine that periodically settles
// wagers whose end date has passed. It is best-effort and logs failures.
func StartWagerSweeper(interval time.Duration, wagers *services.WagerService) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := wagers.SweepExpired(ctx)
			cancel()
			if err != nil {
				Sugar.Warnf("wager sweep failed: %v", err)
				continue
			}
			if n > 0 {
				Sugar.Infof("wager sweep settled %d expired wagers", n)
			}
		}
	}()
}
