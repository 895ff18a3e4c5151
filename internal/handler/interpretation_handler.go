package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeos/internal/domain/interpretation"
	"lifeos/internal/interpreter"
	"lifeos/internal/transport/httpdto"
)

// InterpretationHandler exposes the human review surface for calendar
// event interpretations.
type InterpretationHandler struct {
	interpreter *interpreter.Interpreter
}

func NewInterpretationHandler(interp *interpreter.Interpreter) *InterpretationHandler {
	return &InterpretationHandler{interpreter: interp}
}

// ListPending handles GET /api/calendar/interpretations/pending.
func (h *InterpretationHandler) ListPending(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.interpreter.ListPending(c.Request.Context(), userID, queryLimit(c, 50, 200))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	dtos := make([]httpdto.InterpretationDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, toInterpretationDTO(it))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dtos))
}

// Review handles PATCH /api/calendar/interpretations/:id.
func (h *InterpretationHandler) Review(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req httpdto.ReviewInterpretationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	it, err := h.interpreter.UpdateInterpretationStatus(c.Request.Context(), userID, id, interpretation.Status(req.Status), req.RecordID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toInterpretationDTO(it)))
}

func toInterpretationDTO(it interpretation.Interpretation) httpdto.InterpretationDTO {
	return httpdto.InterpretationDTO{
		ID:                 it.ID,
		CalendarEventID:    it.CalendarEventID,
		Domain:             it.Domain,
		RecordType:         it.RecordType,
		ConfidenceScore:    it.ConfidenceScore,
		Status:             string(it.Status),
		ClassificationData: it.ClassificationData,
		RecordID:           it.RecordID,
		CreatedAt:          it.CreatedAt,
		UpdatedAt:          it.UpdatedAt,
	}
}
