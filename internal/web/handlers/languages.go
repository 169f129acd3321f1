package handlers

import (
	"net/http"

	"github.com/jusunglee/olchiki/internal/romanize"
)

type languageResponse struct {
	Name   string `json:"name"`
	Script string `json:"script"`
}

// Languages lists the source languages a native-script text may be written in.
func Languages(w http.ResponseWriter, r *http.Request) {
	langs := romanize.Languages()
	data := make([]languageResponse, len(langs))
	for i, l := range langs {
		data[i] = languageResponse{Name: l.Name, Script: l.Script.Name}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": data,
		"schemes":   []romanize.Scheme{romanize.ITRANS, romanize.ISO},
	})
}
