package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/services"
)

type MaintenanceHandler struct {
	log            *logger.Logger
	maintenanceSvc services.MaintenanceService
}

func NewMaintenanceHandler(log *logger.Logger, maintenanceSvc services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		log:            log.With("handler", "MaintenanceHandler"),
		maintenanceSvc: maintenanceSvc,
	}
}

// POST /api/maintenance/sweep
// One full tombstone-and-purge pass.
func (h *MaintenanceHandler) Sweep(c *gin.Context) {
	result, err := h.maintenanceSvc.Sweep(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, result)
}
