package services

import (
	"context"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/sweeper"
)

// MaintenanceService runs the deferred half of the entity lifecycle.
type MaintenanceService interface {
	Sweep(ctx context.Context) (*sweeper.Result, error)
}

type maintenanceService struct {
	log     *logger.Logger
	sweeper *sweeper.Sweeper
}

func NewMaintenanceService(log *logger.Logger, sw *sweeper.Sweeper) MaintenanceService {
	return &maintenanceService{log: log.With("service", "MaintenanceService"), sweeper: sw}
}

func (s *maintenanceService) Sweep(ctx context.Context) (*sweeper.Result, error) {
	return s.sweeper.Sweep(ctx)
}
