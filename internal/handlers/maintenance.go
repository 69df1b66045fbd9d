package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dakshlabs/examgraph-backend/internal/maintenance"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
)

type MaintenanceHandler struct {
	log *logger.Logger
	svc *maintenance.Service
}

func NewMaintenanceHandler(log *logger.Logger, svc *maintenance.Service) *MaintenanceHandler {
	return &MaintenanceHandler{
		log: log.With("handler", "MaintenanceHandler"),
		svc: svc,
	}
}

// POST /api/maintenance/repair-scan
// Flag questions missing tag dimensions. ?dry_run=true only reports.
func (h *MaintenanceHandler) RepairScan(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"

	report, err := h.svc.RepairScan(c.Request.Context(), dryRun)
	if err != nil {
		h.log.Error("repair scan failed", "error", err.Error())
		RespondError(c, http.StatusInternalServerError, "repair_scan_failed", err)
		return
	}
	RespondOK(c, report)
}

// POST /api/maintenance/migrate-tags
// Upgrade legacy tag edges to the provenance schema. ?dry_run=true
// only counts.
func (h *MaintenanceHandler) MigrateTags(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"

	report, err := h.svc.MigrateLegacySchema(c.Request.Context(), dryRun)
	if err != nil {
		h.log.Error("tag migration failed", "error", err.Error())
		RespondError(c, http.StatusInternalServerError, "tag_migration_failed", err)
		return
	}
	RespondOK(c, report)
}
