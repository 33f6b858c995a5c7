package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/reconcile"
	"github.com/yungbote/daybook/internal/services"
)

type EntryHandler struct {
	log        *logger.Logger
	archiveSvc services.ArchiveService
	querySvc   services.QueryService
}

func NewEntryHandler(log *logger.Logger, archiveSvc services.ArchiveService, querySvc services.QueryService) *EntryHandler {
	return &EntryHandler{
		log:        log.With("handler", "EntryHandler"),
		archiveSvc: archiveSvc,
		querySvc:   querySvc,
	}
}

type reconcileRequest struct {
	// Document is one raw entry: YAML front matter plus body text.
	Document string `json:"document" binding:"required"`
	// Mode defaults to replace.
	Mode string `json:"mode"`
}

type reconcileBatchRequest struct {
	Documents []string `json:"documents" binding:"required"`
	Mode      string   `json:"mode"`
}

func parseMode(raw string) (reconcile.Mode, bool) {
	switch raw {
	case "", string(reconcile.ModeReplace):
		return reconcile.ModeReplace, true
	case string(reconcile.ModeMerge):
		return reconcile.ModeMerge, true
	}
	return "", false
}

// POST /api/entries/reconcile
// Reconcile one entry document against the store.
func (h *EntryHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	mode, ok := parseMode(req.Mode)
	if !ok {
		RespondError(c, http.StatusBadRequest, "bad_request", errModeValue(req.Mode))
		return
	}

	report, err := h.archiveSvc.ReconcileDocument(c.Request.Context(), req.Document, mode)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, report)
}

// POST /api/entries/reconcile-batch
// Reconcile many documents; per-document outcomes, never fail-fast.
func (h *EntryHandler) ReconcileBatch(c *gin.Context) {
	var req reconcileBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	mode, ok := parseMode(req.Mode)
	if !ok {
		RespondError(c, http.StatusBadRequest, "bad_request", errModeValue(req.Mode))
		return
	}

	items := h.archiveSvc.ReconcileBatch(c.Request.Context(), req.Documents, mode)
	RespondOK(c, gin.H{"items": items})
}

// GET /api/entries?from=yyyy-mm-dd&to=yyyy-mm-dd
func (h *EntryHandler) List(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		to = &t
	}

	entries, err := h.querySvc.ListEntries(c.Request.Context(), from, to)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}

// GET /api/entries/:date
// The entry's reconciled view: every relationship resolved to names.
func (h *EntryHandler) Get(c *gin.Context) {
	view, err := h.querySvc.GetEntryView(c.Request.Context(), c.Param("date"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func errModeValue(raw string) error { return fmt.Errorf("unknown mode %q", raw) }
