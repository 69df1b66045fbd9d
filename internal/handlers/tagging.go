package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dakshlabs/examgraph-backend/internal/platform/logger"
	"github.com/dakshlabs/examgraph-backend/internal/tagging"
)

type TaggingHandler struct {
	log      *logger.Logger
	engine   *tagging.Engine
	resolver *tagging.Resolver
}

func NewTaggingHandler(log *logger.Logger, engine *tagging.Engine, resolver *tagging.Resolver) *TaggingHandler {
	return &TaggingHandler{
		log:      log.With("handler", "TaggingHandler"),
		engine:   engine,
		resolver: resolver,
	}
}

func questionIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// POST /api/questions/:id/tag
// Run one question through classification. ?force=true retags an
// already tagged question at the next version.
func (h *TaggingHandler) TagQuestion(c *gin.Context) {
	id, err := questionIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_question_id", err)
		return
	}
	force := c.Query("force") == "true"

	outcome := h.engine.TagQuestion(c.Request.Context(), id, force)
	switch outcome.Status {
	case tagging.StatusNotFound:
		RespondError(c, http.StatusNotFound, "question_not_found", errors.New(outcome.Error))
	case tagging.StatusFailed:
		RespondError(c, http.StatusUnprocessableEntity, "tagging_failed", errors.New(outcome.Error))
	default:
		RespondOK(c, outcome)
	}
}

type batchTagRequest struct {
	QuestionIDs []int64 `json:"question_ids"`
	Limit       int     `json:"limit"`
	Force       bool    `json:"force"`
}

// POST /api/questions/tag-batch
// Tag an explicit list of questions, or with limit instead, the next
// questions flagged needs_ai_tagging. One run id covers the batch.
func (h *TaggingHandler) BatchTag(c *gin.Context) {
	var req batchTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	var result *tagging.BatchResult
	var err error
	switch {
	case len(req.QuestionIDs) > 0:
		result, err = h.engine.BatchTagQuestions(c.Request.Context(), req.QuestionIDs, req.Force)
	case req.Limit > 0:
		result, err = h.engine.BatchTagFlagged(c.Request.Context(), req.Limit)
	default:
		RespondError(c, http.StatusBadRequest, "invalid_request",
			errors.New("either question_ids or a positive limit is required"))
		return
	}
	if err != nil {
		if result == nil {
			h.log.Error("batch tagging failed", "error", err.Error())
			RespondError(c, http.StatusInternalServerError, "batch_tagging_failed", err)
			return
		}
		// Partial results still go back to the caller on interruption.
		c.JSON(http.StatusAccepted, result)
		return
	}
	RespondOK(c, result)
}

// GET /api/questions/:id/tags
// Effective tags plus the full edge history.
func (h *TaggingHandler) GetTags(c *gin.Context) {
	id, err := questionIDParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_question_id", err)
		return
	}

	tags, err := h.resolver.Resolve(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, tagging.ErrQuestionNotFound) {
			RespondError(c, http.StatusNotFound, "question_not_found", err)
			return
		}
		h.log.Error("tag resolution failed", "question_id", id, "error", err.Error())
		RespondError(c, http.StatusInternalServerError, "tag_resolution_failed", err)
		return
	}
	RespondOK(c, tags)
}
