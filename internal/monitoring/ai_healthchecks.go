package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorClassifierHealth polls the remote classifier and publishes the
// result to healthy until ctx is cancelled.
func MonitorClassifierHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool) {
	monitor(ctx, checker, healthy, time.Second*HEALTHCHECK_TIMER)
}

func monitor(ctx context.Context, checker HealthChecker, healthy *atomic.Bool, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := checker.HealthCheck(ctx)
			if healthy.Swap(isHealthy) != isHealthy {
				if isHealthy {
					slog.Info("[HealthCheck] Classifier recovered")
				} else {
					slog.Warn("[HealthCheck] Classifier is unhealthy")
				}
			}
		}
	}
}
