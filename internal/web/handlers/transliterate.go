package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jusunglee/olchiki/internal/batch"
	"github.com/jusunglee/olchiki/internal/romanize"
	"github.com/jusunglee/olchiki/internal/transliteration"
)

const maxTextBytes = 1 << 20

type TransliterateHandler struct {
	processor *batch.Processor
	log       *slog.Logger
}

func NewTransliterateHandler(processor *batch.Processor, log *slog.Logger) *TransliterateHandler {
	return &TransliterateHandler{processor: processor, log: log}
}

type transliterateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Scheme   string `json:"scheme"`
	Explain  bool   `json:"explain"`
}

type transliterateResponse struct {
	Romanized string                 `json:"romanized"`
	OlChiki   string                 `json:"olchiki"`
	Trace     *transliteration.Trace `json:"trace,omitempty"`
}

func (h *TransliterateHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTextBytes)

	var req transliterateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	opts, err := parseOptions(req.Language, req.Scheme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.processor.Convert(r.Context(), req.Text, opts)
	if err != nil {
		writeConvertError(w, r, h.log, err, http.StatusBadGateway, "romanization failed")
		return
	}

	resp := transliterateResponse{Romanized: conv.Romanized, OlChiki: conv.OlChiki}
	if req.Explain {
		trace := transliteration.Explain(conv.Romanized)
		resp.Trace = &trace
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusClientClosedRequest is nginx's code for a request the client
// abandoned before the response was ready.
const statusClientClosedRequest = 499

// writeConvertError responds to a failed conversion. Errors the server did
// not anticipate get fallback and msg.
func writeConvertError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback int, msg string) {
	ctx := r.Context()
	switch {
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		log.DebugContext(ctx, "client canceled conversion", "error", err)
		w.WriteHeader(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		log.WarnContext(ctx, "conversion timed out", "error", err)
		writeError(w, http.StatusGatewayTimeout, "romanization timed out")
	case errors.Is(err, romanize.ErrUnmappable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, batch.ErrNoRomanizer):
		log.ErrorContext(ctx, "native-script input without a romanizer", "error", err)
		writeError(w, http.StatusInternalServerError, "no romanizer configured for native-script input")
	default:
		log.ErrorContext(ctx, "converting text", "error", err)
		writeError(w, fallback, msg)
	}
}

// parseOptions resolves request parameters. An empty language means the text
// is already romanized.
func parseOptions(language, scheme string) (batch.Options, error) {
	s, err := romanize.ParseScheme(scheme)
	if err != nil {
		return batch.Options{}, err
	}
	opts := batch.Options{Scheme: s}
	if language != "" {
		l, err := romanize.LookupLanguage(language)
		if err != nil {
			return batch.Options{}, err
		}
		opts.Language = &l
	}
	return opts, nil
}
