package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jusunglee/olchiki/internal/batch"
	"github.com/jusunglee/olchiki/internal/db"
)

type ArchiveHandler struct {
	processor      *batch.Processor
	repo           db.Repository
	log            *slog.Logger
	maxUploadBytes int64
}

func NewArchiveHandler(processor *batch.Processor, repo db.Repository, log *slog.Logger, maxUploadBytes int64) *ArchiveHandler {
	return &ArchiveHandler{processor: processor, repo: repo, log: log, maxUploadBytes: maxUploadBytes}
}

// Upload converts a multipart "archive" zip and responds with the converted
// zip. Conversion counts and the stored batch ID travel in response headers.
func (h *ArchiveHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	q := r.URL.Query()
	opts, err := parseOptions(q.Get("language"), q.Get("scheme"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("archive")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "archive too large")
			return
		}
		writeError(w, http.StatusBadRequest, `multipart field "archive" is required`)
		return
	}
	defer file.Close()

	var out bytes.Buffer
	report, err := h.processor.ProcessArchive(r.Context(), file, header.Size, opts, &out)
	if err != nil {
		// The failure is recorded even when the client has gone away.
		if _, recErr := batch.RecordFailure(context.WithoutCancel(r.Context()), h.repo, header.Filename, opts, err); recErr != nil {
			h.log.ErrorContext(r.Context(), "recording failed batch", "error", recErr)
		}
		if batch.IsClientError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeConvertError(w, r, h.log.With("name", header.Filename), err, http.StatusInternalServerError, "internal error")
		return
	}

	saved, err := batch.SaveReport(r.Context(), h.repo, header.Filename, report)
	if err != nil {
		h.log.ErrorContext(r.Context(), "saving batch", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.InfoContext(r.Context(), "archive converted",
		"batch_id", saved.ID,
		"name", header.Filename,
		"converted", report.Converted,
		"skipped", report.Skipped,
	)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batch.OutputArchiveName))
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	w.Header().Set("X-Batch-ID", strconv.FormatInt(saved.ID, 10))
	w.Header().Set("X-Documents-Converted", strconv.Itoa(report.Converted))
	w.Header().Set("X-Documents-Skipped", strconv.Itoa(report.Skipped))
	w.WriteHeader(http.StatusOK)
	out.WriteTo(w)
}
