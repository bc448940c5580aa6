package usecase

import (
	"context"
	"time"

	"hirematrix-backend/internal/domain"
)

const probeTimeout = 3 * time.Second

type healthUsecase struct {
	dbStatus  func(ctx context.Context) (map[string]interface{}, error)
	redisPing func(ctx context.Context) error
}

// NewHealthUsecase builds the probes. redisPing may be nil when Redis is not configured.
func NewHealthUsecase(dbStatus func(ctx context.Context) (map[string]interface{}, error), redisPing func(ctx context.Context) error) domain.HealthUsecase {
	return &healthUsecase{dbStatus: dbStatus, redisPing: redisPing}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	return map[string]string{
		"status": "ok",
	}
}

func (u *healthUsecase) DatabaseStatus(ctx context.Context) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	db, err := u.dbStatus(ctx)
	result := map[string]interface{}{
		"database": db,
		"redis":    u.redisStatus(ctx),
	}
	return result, err
}

func (u *healthUsecase) redisStatus(ctx context.Context) string {
	if u.redisPing == nil {
		return "not_configured"
	}
	if err := u.redisPing(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}
