package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeos/internal/inference"
	"lifeos/internal/insights"
	"lifeos/internal/repository"
	"lifeos/internal/transport/httpdto"
)

// InsightHandler serves generated insights and the observability surface
// behind the insight pipeline.
type InsightHandler struct {
	insightRepo repository.InsightRepository
	telemetry   *insights.Telemetry
	emitter     *inference.Emitter
}

func NewInsightHandler(insightRepo repository.InsightRepository, telemetry *insights.Telemetry, emitter *inference.Emitter) *InsightHandler {
	return &InsightHandler{insightRepo: insightRepo, telemetry: telemetry, emitter: emitter}
}

// List handles GET /api/insights.
func (h *InsightHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	records, err := h.insightRepo.ListByUser(c.Request.Context(), userID, queryLimit(c, 50, 200))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(records))
}

// Telemetry handles GET /admin/debug/insight-telemetry.
func (h *InsightHandler) Telemetry(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(h.telemetry.Snapshot()))
}

// InferenceFeedback handles GET /admin/debug/inference-feedback. It
// returns recent inference events flagged as false positives or false
// negatives, optionally scoped to one domain.
func (h *InsightHandler) InferenceFeedback(c *gin.Context) {
	flagged, err := h.emitter.FetchFlaggedInferenceEvents(c.Request.Context(), c.Query("domain"), queryLimit(c, 100, 500))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(flagged))
}
