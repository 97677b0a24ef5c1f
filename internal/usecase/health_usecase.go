package usecase

import (
	"context"
	"time"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

type healthUsecase struct {
	store domain.PathStore
	redis func(ctx context.Context) error
}

// NewHealthUsecase checks the store and, when redisCheck is non-nil, Redis.
func NewHealthUsecase(store domain.PathStore, redisCheck func(ctx context.Context) error) domain.HealthUsecase {
	return &healthUsecase{store: store, redis: redisCheck}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	result := map[string]string{"status": "ok", "store": "ok"}
	if _, err := u.store.Read(ctx, domain.PathSettings); err != nil {
		logger.Log.Warn("health: store check failed", "error", err)
		result["store"] = "unavailable"
		result["status"] = "degraded"
	}

	switch {
	case u.redis == nil:
		result["redis"] = "disabled"
	case u.redis(ctx) != nil:
		// Redis-backed caches fall back to memory, so this does not degrade the service.
		result["redis"] = "unavailable"
	default:
		result["redis"] = "ok"
	}
	return result
}
