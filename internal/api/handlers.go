package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Maksimka7878/fixnew-importer/internal/jobs"
	"github.com/Maksimka7878/fixnew-importer/internal/scraper"
)

type Handlers struct {
	jobs   *jobs.Manager
	logger *slog.Logger
}

func NewHandlers(jobs *jobs.Manager, logger *slog.Logger) *Handlers {
	return &Handlers{
		jobs:   jobs,
		logger: logger,
	}
}

// ImportRequest optionally overrides run limits. An empty body is valid
// and runs with the configured defaults.
type ImportRequest struct {
	CategoriesLimit     int  `json:"categories_limit"`
	ProductsPerCategory int  `json:"products_per_category"`
	MaxPagesPerCategory int  `json:"max_pages_per_category"`
	UseMock             bool `json:"use_mock"`
}

type ImportResponse struct {
	JobID string `json:"job_id"`
}

// StartImport kicks off an import job, fire-and-forget. Progress is polled
// via ImportStatus.
func (h *Handlers) StartImport(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	jobID, err := h.jobs.Start(r.Context(), scraper.Options{
		CategoriesLimit:     req.CategoriesLimit,
		ProductsPerCategory: req.ProductsPerCategory,
		MaxPagesPerCategory: req.MaxPagesPerCategory,
		UseMock:             req.UseMock,
	})
	if errors.Is(err, jobs.ErrImportRunning) {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to start import", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to start import")
		return
	}

	h.respondJSON(w, http.StatusAccepted, ImportResponse{JobID: jobID})
}

// ImportStatus returns the current or last job's status, consulting the
// shared mirror when this instance has not run anything itself.
func (h *Handlers) ImportStatus(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.Current(r.Context()))
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
