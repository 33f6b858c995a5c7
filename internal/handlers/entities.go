package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/notesync"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/services"
	"github.com/yungbote/daybook/internal/types"
)

type EntityHandler struct {
	log      *logger.Logger
	querySvc services.QueryService
	mergeSvc services.MergeBackService
}

func NewEntityHandler(log *logger.Logger, querySvc services.QueryService, mergeSvc services.MergeBackService) *EntityHandler {
	return &EntityHandler{
		log:      log.With("handler", "EntityHandler"),
		querySvc: querySvc,
		mergeSvc: mergeSvc,
	}
}

func kindParam(c *gin.Context) (types.EntityKind, error) {
	raw := c.Param("kind")
	kind, ok := types.ParseEntityKind(raw)
	if !ok {
		return "", fmt.Errorf("unknown entity kind %q", raw)
	}
	return kind, nil
}

// GET /api/entities/:kind
func (h *EntityHandler) List(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	entities, err := h.querySvc.ListEntities(c.Request.Context(), kind)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"entities": entities})
}

// GET /api/entities/:kind/:id
// The note-page payload: full row plus appearance dates.
func (h *EntityHandler) Get(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	view, err := h.querySvc.GetEntityView(c.Request.Context(), kind, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

// POST /api/entities/:kind/:id/merge
// Merge edited note-page fields back into the store. Conflicted fields
// keep the store value and come back as 409 with both versions.
func (h *EntityHandler) Merge(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	var note notesync.NoteState
	if err := c.ShouldBindJSON(&note); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.mergeSvc.Merge(c.Request.Context(), kind, id, note)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := result.Err(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"result": result, "error": err.Error()})
		return
	}
	RespondOK(c, result)
}
