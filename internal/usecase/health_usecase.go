package usecase

import (
	"context"
	"sort"
	"time"
)

// HealthCheck probes one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthUsecase reports "ok" plus one entry per named check
func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks, timeout: 3 * time.Second}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{"status": "ok"}

	names := make([]string, 0, len(u.checks))
	for name := range u.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, u.timeout)
		err := u.checks[name](cctx)
		cancel()
		if err != nil {
			result[name] = "down: " + err.Error()
			result["status"] = "degraded"
			continue
		}
		result[name] = "ok"
	}
	return result
}
