package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"note-service/internal/middleware"
	"note-service/internal/store"
	"note-service/pkg/logger"
	"note-service/prometheus"
)

// NoteHandler serves tenant-scoped note CRUD. The caller's tenant comes
// from the verified claims, never from the request body or path.
type NoteHandler struct {
	notes NoteRepository
}

// NewNoteHandler creates the note handler
func NewNoteHandler(notes NoteRepository) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteRequest struct {
	Title   string `json:"title" validate:"required"`
	Details string `json:"details"`
}

// noteID parses the :id path parameter. An unparseable id cannot name
// an existing note, so it reports not-found like any other miss.
func noteID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// List returns the caller's tenant's notes, newest first
func (h *NoteHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	claims := middleware.ClaimsFromContext(c)
	prometheus.RecordNoteOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	notes, err := h.notes.ListByTenant(c.Request().Context(), claims.TenantID)
	if err != nil {
		log.Error("Failed to list notes", zap.Uint("tenant_id", claims.TenantID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve notes"})
	}

	return c.JSON(http.StatusOK, notes)
}

// Create inserts a note for the caller's tenant, subject to the
// free-plan quota
func (h *NoteHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	claims := middleware.ClaimsFromContext(c)
	prometheus.RecordNoteOperation("create")

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid note payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	note, err := h.notes.Create(c.Request().Context(), claims.TenantID, claims.UserID, req.Title, req.Details)
	if err != nil {
		if errors.Is(err, store.ErrQuotaExceeded) {
			log.Info("Note creation rejected by quota", zap.Uint("tenant_id", claims.TenantID))
			prometheus.QuotaRejectionCounter.Inc()
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":   "quota_exceeded",
				"message": "Free plan limit reached. Upgrade to Pro for unlimited notes.",
			})
		}
		log.Error("Failed to create note", zap.Uint("tenant_id", claims.TenantID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create note"})
	}

	log.Info("Note created",
		zap.Uint("note_id", note.ID),
		zap.Uint("tenant_id", note.TenantID))
	return c.JSON(http.StatusCreated, note)
}

// Get returns a single note if it belongs to the caller's tenant
func (h *NoteHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	claims := middleware.ClaimsFromContext(c)
	prometheus.RecordNoteOperation("get")

	id, ok := noteID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	note, err := h.notes.GetByID(c.Request().Context(), claims.TenantID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to get note", zap.Uint("note_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve note"})
	}

	return c.JSON(http.StatusOK, note)
}

// Update rewrites a note's title and details
func (h *NoteHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	claims := middleware.ClaimsFromContext(c)
	prometheus.RecordNoteOperation("update")

	id, ok := noteID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid note payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	note, err := h.notes.Update(c.Request().Context(), claims.TenantID, id, req.Title, req.Details)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to update note", zap.Uint("note_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update note"})
	}

	log.Info("Note updated",
		zap.Uint("note_id", note.ID),
		zap.Uint("tenant_id", note.TenantID))
	return c.JSON(http.StatusOK, note)
}

// Delete removes a note
func (h *NoteHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	claims := middleware.ClaimsFromContext(c)
	prometheus.RecordNoteOperation("delete")

	id, ok := noteID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.notes.Delete(c.Request().Context(), claims.TenantID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to delete note", zap.Uint("note_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete note"})
	}

	log.Info("Note deleted", zap.Uint("note_id", id), zap.Uint("tenant_id", claims.TenantID))
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
