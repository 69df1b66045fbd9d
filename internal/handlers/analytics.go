package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dakshlabs/examgraph-backend/internal/analytics"
	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
)

type AnalyticsHandler struct {
	log         *logger.Logger
	students    *analytics.StudentAnalyzer
	cohorts     *analytics.CohortAnalyzer
	performance *analytics.PerformanceReader
}

func NewAnalyticsHandler(log *logger.Logger, students *analytics.StudentAnalyzer, cohorts *analytics.CohortAnalyzer, performance *analytics.PerformanceReader) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:         log.With("handler", "AnalyticsHandler"),
		students:    students,
		cohorts:     cohorts,
		performance: performance,
	}
}

func studentIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// GET /api/students/:id/analysis
// Full longitudinal report, read-only.
func (h *AnalyticsHandler) GetStudentAnalysis(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}

	report, err := h.students.AnalyzeStudent(c.Request.Context(), id)
	if err != nil {
		h.respondAnalyticsError(c, id, err)
		return
	}
	RespondOK(c, report)
}

// POST /api/students/:id/analysis
// Recompute the report and persist mastery edges and the summary.
func (h *AnalyticsHandler) RunStudentAnalysis(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}

	report, err := h.students.RunStudentAnalysis(c.Request.Context(), id)
	if err != nil {
		h.respondAnalyticsError(c, id, err)
		return
	}
	RespondOK(c, report)
}

// GET /api/students/:id/summary
// Cached denormalized rollup.
func (h *AnalyticsHandler) GetStudentSummary(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}

	sum, err := h.students.StudentSummary(c.Request.Context(), id)
	if err != nil {
		h.respondAnalyticsError(c, id, err)
		return
	}
	if sum == nil {
		RespondError(c, http.StatusNotFound, "summary_not_computed", errors.New("no summary computed yet"))
		return
	}
	RespondOK(c, sum)
}

// GET /api/students/:id/performance
// Raw outcome and timing counts.
func (h *AnalyticsHandler) GetStudentPerformance(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}

	view, err := h.performance.StudentPerformance(c.Request.Context(), id)
	if err != nil {
		h.respondAnalyticsError(c, id, err)
		return
	}
	RespondOK(c, view)
}

// GET /api/cohorts/:name/analysis
// Concept alerts and leaderboard for one cohort.
func (h *AnalyticsHandler) GetCohortAnalysis(c *gin.Context) {
	name := c.Param("name")

	report, err := h.cohorts.RunCohortAnalysis(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, analytics.ErrCohortNotFound) {
			RespondError(c, http.StatusNotFound, "cohort_not_found", err)
			return
		}
		h.log.Error("cohort analysis failed", "cohort", name, "error", err.Error())
		RespondError(c, http.StatusInternalServerError, "cohort_analysis_failed", err)
		return
	}
	RespondOK(c, report)
}

// POST /api/summaries/recompute
// Recompute every student summary with the bounded worker pool.
func (h *AnalyticsHandler) RecomputeSummaries(c *gin.Context) {
	processed, failed, err := h.students.RecomputeAllSummaries(c.Request.Context())
	if err != nil {
		h.log.Error("summary recompute failed", "error", err.Error())
		RespondError(c, http.StatusInternalServerError, "summary_recompute_failed", err)
		return
	}
	RespondOK(c, gin.H{"processed": processed, "failed": failed})
}

func (h *AnalyticsHandler) respondAnalyticsError(c *gin.Context, studentID int64, err error) {
	if errors.Is(err, analytics.ErrStudentNotFound) {
		RespondError(c, http.StatusNotFound, "student_not_found", err)
		return
	}
	h.log.Error("student analytics failed", "student_id", studentID, "error", err.Error())
	RespondError(c, http.StatusInternalServerError, "analytics_failed", err)
}
