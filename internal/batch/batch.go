// Package batch converts single texts and zip bundles of .txt documents into
// Ol Chiki, optionally romanizing native Indic script first.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jusunglee/olchiki/internal/metrics"
	"github.com/jusunglee/olchiki/internal/romanize"
	"github.com/jusunglee/olchiki/internal/transliteration"
)

var (
	ErrBadArchive  = errors.New("corrupted or invalid zip archive")
	ErrNoDocuments = errors.New("no .txt files found in archive")
	ErrNoRomanizer = errors.New("no romanizer configured")
)

// Options selects how input text is read. A nil Language means the input is
// already romanized and goes straight to the engine.
type Options struct {
	Language *romanize.Language
	Scheme   romanize.Scheme
}

// LanguageName is the source language name, or "" for romanized input.
func (o Options) LanguageName() string {
	if o.Language == nil {
		return ""
	}
	return o.Language.Name
}

// Conversion is the result of converting one text.
type Conversion struct {
	Romanized string `json:"romanized"`
	OlChiki   string `json:"olchiki"`
}

type Processor struct {
	romanizer   romanize.Romanizer
	concurrency int
	log         *slog.Logger
}

// NewProcessor returns a processor that converts up to concurrency documents
// at once. romanizer may be nil when only romanized input is expected.
func NewProcessor(romanizer romanize.Romanizer, concurrency int, log *slog.Logger) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		romanizer:   romanizer,
		concurrency: concurrency,
		log:         log,
	}
}

// Convert romanizes text when a source language is set, then transliterates
// it into Ol Chiki.
func (p *Processor) Convert(ctx context.Context, text string, opts Options) (Conversion, error) {
	romanized := text
	if opts.Language != nil {
		if p.romanizer == nil {
			return Conversion{}, ErrNoRomanizer
		}
		start := time.Now()
		var err error
		romanized, err = p.romanizer.Romanize(ctx, text, opts.Language.Script, opts.Scheme)
		metrics.RomanizeDuration.WithLabelValues(romanizerLabel(p.romanizer)).Observe(time.Since(start).Seconds())
		if err != nil {
			return Conversion{}, fmt.Errorf("romanizing %s: %w", opts.Language.Name, err)
		}
	}

	start := time.Now()
	out := transliteration.Transliterate(romanized)
	metrics.TransliterationDuration.Observe(time.Since(start).Seconds())
	metrics.RunesTransliterated.Add(float64(utf8.RuneCountInString(romanized)))

	return Conversion{Romanized: romanized, OlChiki: out}, nil
}

func romanizerLabel(r romanize.Romanizer) string {
	switch r.(type) {
	case *romanize.RuleRomanizer:
		return "rule"
	case *romanize.LLMRomanizer:
		return "llm"
	default:
		return "other"
	}
}
