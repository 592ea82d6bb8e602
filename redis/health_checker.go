package redis

import (
	"context"
	"fmt"

	"github.com/KOMKZ/yogan-property/component"
)

// HealthChecker pings every configured instance
type HealthChecker struct {
	manager *Manager
}

var _ component.HealthChecker = (*HealthChecker)(nil)

func NewHealthChecker(manager *Manager) *HealthChecker {
	return &HealthChecker{manager: manager}
}

func (h *HealthChecker) Name() string {
	return component.Redis
}

func (h *HealthChecker) Check(ctx context.Context) error {
	if h.manager == nil {
		return fmt.Errorf("redis manager not initialized")
	}
	return h.manager.Ping(ctx)
}
