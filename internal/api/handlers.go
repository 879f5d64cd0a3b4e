package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/hyperengineering/plankdash/internal/generate"
	"github.com/hyperengineering/plankdash/internal/snapshot"
	"github.com/hyperengineering/plankdash/internal/types"
	"github.com/hyperengineering/plankdash/internal/validation"
)

// maxRequestBody bounds POST bodies; the only accepted field is a date.
const maxRequestBody = 4 << 10

// SnapshotGenerator is the subset of *generate.Generator the handlers use.
type SnapshotGenerator interface {
	Generate(ctx context.Context, opts generate.Options) (*generate.Result, error)
	Last() *generate.Result
	OutputPath() string
	Publisher() snapshot.Publisher
}

// Handler implements the API handlers
type Handler struct {
	generator SnapshotGenerator
	version   string
}

// NewHandler creates a new Handler
func NewHandler(g SnapshotGenerator, version string) *Handler {
	return &Handler{
		generator: g,
		version:   version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{
		Status:  "healthy",
		Version: h.version,
	}
	if last := h.generator.Last(); last != nil {
		generated := last.Snapshot.GeneratedAt
		resp.LastGenerated = &generated
		resp.LastRunID = last.RunID
	}

	writeJSON(w, http.StatusOK, resp)
}

// Snapshot handles GET /api/v1/snapshot by streaming the published document.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.generator.OutputPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			WriteProblem(w, r, http.StatusNotFound, "No snapshot has been generated yet")
			return
		}
		slog.Error("snapshot open failed",
			"component", "api",
			"action", "snapshot_read",
			"error", err,
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		slog.Warn("snapshot stream interrupted",
			"component", "api",
			"action", "snapshot_read",
			"error", err,
		)
	}
}

// Regenerate handles POST /api/v1/snapshot. The body is optional.
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req types.RegenerateRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	var v validation.Collector
	if req.Today != "" {
		v.Add(validation.ValidateISODate("today", req.Today))
	}
	if v.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", v.Errors())
		return
	}

	runID := generate.NewRunID()
	ctx := generate.WithRunID(r.Context(), runID)
	res, err := h.generator.Generate(ctx, generate.Options{Today: req.Today})
	if err != nil {
		MapGenerateError(w, r, err)
		return
	}

	w.Header().Set("X-Run-ID", res.RunID)
	writeJSON(w, http.StatusOK, res.Snapshot)
}

// SnapshotURL handles GET /api/v1/snapshot/url.
func (h *Handler) SnapshotURL(w http.ResponseWriter, r *http.Request) {
	url, expiry, err := h.generator.Publisher().PresignedURL(r.Context())
	if err != nil {
		if errors.Is(err, snapshot.ErrNotConfigured) {
			WriteProblem(w, r, http.StatusNotFound, "Snapshot publishing is not configured")
			return
		}
		slog.Error("presign failed",
			"component", "api",
			"action", "snapshot_url",
			"error", err,
		)
		WriteProblem(w, r, http.StatusBadGateway, "Could not generate download URL")
		return
	}

	writeJSON(w, http.StatusOK, types.SnapshotURLResponse{URL: url, ExpiresAt: expiry})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
