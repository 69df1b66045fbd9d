package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dakshlabs/examgraph-backend/internal/ingestion"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
)

type IngestionHandler struct {
	log *logger.Logger
	svc *ingestion.Service
}

func NewIngestionHandler(log *logger.Logger, svc *ingestion.Service) *IngestionHandler {
	return &IngestionHandler{
		log: log.With("handler", "IngestionHandler"),
		svc: svc,
	}
}

// POST /api/reports
// Ingest one exam report.
func (h *IngestionHandler) IngestReport(c *gin.Context) {
	var report ingestion.ExamReport
	if err := c.ShouldBindJSON(&report); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.svc.ProcessReport(c.Request.Context(), &report)
	if err != nil {
		if errors.Is(err, ingestion.ErrInvalidReport) {
			RespondError(c, http.StatusBadRequest, "invalid_report", err)
			return
		}
		h.log.Error("report ingestion failed",
			"student_id", report.Student.ID,
			"exam_id", report.Exam.ID,
			"error", err.Error())
		RespondError(c, http.StatusInternalServerError, "ingestion_failed", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
