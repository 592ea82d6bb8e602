package database

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
	return component.Database
}

func (h *HealthChecker) Check(ctx context.Context) error {
	if h.manager == nil {
		return fmt.Errorf("database manager not initialized")
	}
	if len(h.manager.Names()) == 0 {
		return fmt.Errorf("no database instances configured")
	}
	return h.manager.Ping(ctx)
}
