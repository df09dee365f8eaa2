// Package api provides HTTP API handlers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/backend"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/database"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/mockdata"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/pipeline"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/theme"
)

// maxCSVUpload bounds in-memory CSV uploads.
const maxCSVUpload = 16 << 20

// Handler contains all HTTP handlers.
type Handler struct {
	controller *pipeline.Controller
	store      database.Store
	theme      *theme.Manager
}

// NewHandler creates a new handler.
func NewHandler(controller *pipeline.Controller, store database.Store, themeManager *theme.Manager) *Handler {
	return &Handler{
		controller: controller,
		store:      store,
		theme:      themeManager,
	}
}

// HealthCheck returns the service health status. The deploy probe greps the
// body for "healthy".
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// AnalyzeComment handles single-comment submissions.
func (h *Handler) AnalyzeComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := h.controller.SubmitComment(r.Context(), req.Comment)
	h.writeSubmission(w, state, err)
}

// AnalyzeCSV handles CSV batch submissions (multipart field "file").
func (h *Handler) AnalyzeCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCSVUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A CSV file is required in the \"file\" field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxCSVUpload))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	state, submitErr := h.controller.SubmitCSV(r.Context(), header.Filename, content)
	h.writeSubmission(w, state, submitErr)
}

// AnalyzePlayStore handles Play Store URL submissions.
func (h *Handler) AnalyzePlayStore(w http.ResponseWriter, r *http.Request) {
	var req models.PlayStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := h.controller.SubmitPlayStore(r.Context(), req.URL)
	h.writeSubmission(w, state, err)
}

// writeSubmission maps a submission outcome onto a status code. The channel
// state itself is always the body, so clients render from one shape.
func (h *Handler) writeSubmission(w http.ResponseWriter, state models.ProcessingState, err error) {
	status := http.StatusOK
	var validationErr *pipeline.ValidationError
	var callErr *backend.CallError
	switch {
	case err == nil:
		// done
	case errors.As(err, &validationErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &callErr):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, state)
}

// Channels returns the derived presentation view over all three channels.
func (h *Handler) Channels(w http.ResponseWriter, r *http.Request) {
	view := pipeline.Select(h.controller.Store().Snapshot())
	writeJSON(w, http.StatusOK, view)
}

// ChannelState returns one channel's processing state.
func (h *Handler) ChannelState(w http.ResponseWriter, r *http.Request) {
	ch := models.Channel(chi.URLParam(r, "channel"))
	if !ch.Valid() {
		writeError(w, http.StatusNotFound, "Unknown channel")
		return
	}
	writeJSON(w, http.StatusOK, h.controller.Store().State(ch))
}

// DownloadArtifact streams a channel's PDF artifact.
func (h *Handler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	ch := models.Channel(chi.URLParam(r, "channel"))
	if !ch.Valid() {
		writeError(w, http.StatusNotFound, "Unknown channel")
		return
	}

	artifact, name, ok := h.controller.Store().Artifact(ch)
	if !ok {
		writeError(w, http.StatusNotFound, "No artifact available for this channel")
		return
	}
	if name == "" {
		name = pipeline.DefaultArtifactName
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(artifact)
}

// ActivateDemo installs the canned result for a channel.
func (h *Handler) ActivateDemo(w http.ResponseWriter, r *http.Request) {
	ch := models.Channel(chi.URLParam(r, "channel"))
	state, err := h.controller.ActivateDemo(ch)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown channel")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Subcharacteristics returns the ISO 25010 security reference catalog.
func (h *Handler) Subcharacteristics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subcharacteristics": mockdata.Catalog(),
	})
}

// ListResults returns paginated analysis history.
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	results, err := h.store.ListAnalyses(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list results")
		writeError(w, http.StatusInternalServerError, "Failed to list results")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetResult returns a single analysis record by ID.
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "ID is required")
		return
	}

	rec, err := h.store.GetAnalysis(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get analysis record")
		writeError(w, http.StatusInternalServerError, "Failed to get result")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Result not found")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// GetTheme returns the active display mode.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": string(h.theme.Current())})
}

// ToggleTheme flips and persists the display mode.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	mode := h.theme.Toggle(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"theme": string(mode)})
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
