package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jusunglee/olchiki/internal/db"
)

type BatchHandler struct {
	repo db.Repository
	log  *slog.Logger
}

func NewBatchHandler(repo db.Repository, log *slog.Logger) *BatchHandler {
	return &BatchHandler{repo: repo, log: log}
}

type batchResponse struct {
	ID          int64              `json:"id"`
	Source      string             `json:"source"`
	Language    *string            `json:"language,omitempty"`
	Scheme      string             `json:"scheme"`
	Status      string             `json:"status"`
	Converted   int32              `json:"converted"`
	Skipped     int32              `json:"skipped"`
	Error       *string            `json:"error,omitempty"`
	CreatedAt   string             `json:"created_at"`
	CompletedAt string             `json:"completed_at,omitempty"`
	Documents   []documentResponse `json:"documents,omitempty"`
}

type documentResponse struct {
	Name       string  `json:"name"`
	OutputName *string `json:"output_name,omitempty"`
	Status     string  `json:"status"`
	Error      *string `json:"error,omitempty"`
	Runes      int64   `json:"runes"`
}

func toBatchResponse(b db.Batch) batchResponse {
	resp := batchResponse{
		ID:        b.ID,
		Source:    b.Source,
		Scheme:    b.Scheme,
		Status:    b.Status,
		Converted: b.Converted,
		Skipped:   b.Skipped,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.Language.Valid {
		resp.Language = &b.Language.String
	}
	if b.Error.Valid {
		resp.Error = &b.Error.String
	}
	if b.CompletedAt.Valid {
		resp.CompletedAt = b.CompletedAt.Time.Format(time.RFC3339)
	}
	return resp
}

func toDocumentResponse(d db.Document) documentResponse {
	resp := documentResponse{Name: d.Name, Status: d.Status, Runes: d.Runes}
	if d.OutputName.Valid {
		resp.OutputName = &d.OutputName.String
	}
	if d.Error.Valid {
		resp.Error = &d.Error.String
	}
	return resp
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 25
	}

	batches, err := h.repo.ListBatches(r.Context(), int32(limit))
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing batches", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := make([]batchResponse, len(batches))
	for i, b := range batches {
		data[i] = toBatchResponse(b)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	b, err := h.repo.GetBatch(r.Context(), id)
	if err != nil {
		if db.IsNoRows(err) {
			writeError(w, http.StatusNotFound, "batch not found")
			return
		}
		h.log.ErrorContext(r.Context(), "getting batch", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	docs, err := h.repo.ListDocumentsByBatch(r.Context(), id)
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing documents", "batch_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := toBatchResponse(b)
	resp.Documents = make([]documentResponse, len(docs))
	for i, d := range docs {
		resp.Documents[i] = toDocumentResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}
