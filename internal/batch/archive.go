package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"github.com/samber/lo"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/olchiki/internal/db"
	"github.com/jusunglee/olchiki/internal/metrics"
)

// OutputArchiveName is the suggested file name for a converted bundle.
const OutputArchiveName = "olchiki_transliterated.zip"

// Status is a document outcome. The values are the ones stored in the
// documents table.
type Status string

const (
	StatusConverted Status = db.DocumentConverted
	StatusSkipped   Status = db.DocumentSkipped
)

// DocumentResult is the outcome for one .txt entry of an archive.
type DocumentResult struct {
	Name       string `json:"name"`
	OutputName string `json:"output_name,omitempty"`
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
	Runes      int    `json:"runes"`
}

// Report summarizes an archive conversion. Documents are in archive order.
type Report struct {
	Language  string           `json:"language,omitempty"`
	Scheme    string           `json:"scheme"`
	Documents []DocumentResult `json:"documents"`
	Converted int              `json:"converted"`
	Skipped   int              `json:"skipped"`
	Duration  time.Duration    `json:"-"`
}

// OutputName maps an archive entry name to the name of its converted file:
// the last extension is replaced by "_olchiki.txt".
func OutputName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name + "_olchiki.txt"
}

func isDocument(f *zip.File, _ int) bool {
	return !f.FileInfo().IsDir() && strings.HasSuffix(strings.ToLower(f.Name), ".txt")
}

// ProcessArchive reads a zip bundle from r, converts every .txt entry, and
// writes the converted documents as a new zip bundle to w. A document whose
// conversion fails is reported as skipped and the rest of the bundle still
// converts.
func (p *Processor) ProcessArchive(ctx context.Context, r io.ReaderAt, size int64, opts Options, w io.Writer) (Report, error) {
	start := time.Now()
	report := Report{Language: opts.LanguageName(), Scheme: string(opts.Scheme)}
	if opts.Language != nil && p.romanizer == nil {
		return report, ErrNoRomanizer
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	docs := lo.Filter(zr.File, isDocument)
	if len(docs) == 0 {
		return report, ErrNoDocuments
	}
	p.log.InfoContext(ctx, "processing archive", "documents", len(docs), "language", report.Language, "scheme", opts.Scheme)

	results := make([]DocumentResult, len(docs))
	outputs := make([]string, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, f := range docs {
		g.Go(func() error {
			text, err := readDocument(f)
			if err != nil {
				return fmt.Errorf("%w: reading %s: %v", ErrBadArchive, f.Name, err)
			}

			res := DocumentResult{Name: f.Name, Runes: utf8.RuneCountInString(text)}
			conv, err := p.Convert(gctx, text, opts)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.log.WarnContext(gctx, "skipping document", "name", f.Name, "error", err)
				res.Status = StatusSkipped
				res.Error = err.Error()
				results[i] = res
				return nil
			}

			res.Status = StatusConverted
			res.OutputName = OutputName(f.Name)
			results[i] = res
			outputs[i] = conv.OlChiki
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	zw := zip.NewWriter(w)
	for i, res := range results {
		if res.Status != StatusConverted {
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     res.OutputName,
			Method:   zip.Deflate,
			Modified: start,
		})
		if err != nil {
			return report, fmt.Errorf("creating %s: %w", res.OutputName, err)
		}
		if _, err := io.WriteString(fw, outputs[i]); err != nil {
			return report, fmt.Errorf("writing %s: %w", res.OutputName, err)
		}
	}
	if err := zw.Close(); err != nil {
		return report, fmt.Errorf("closing output archive: %w", err)
	}

	report.Documents = results
	for _, res := range results {
		metrics.DocumentsTotal.WithLabelValues(string(res.Status)).Inc()
		if res.Status == StatusConverted {
			report.Converted++
		} else {
			report.Skipped++
		}
	}
	report.Duration = time.Since(start)
	metrics.ArchiveDuration.Observe(report.Duration.Seconds())

	p.log.InfoContext(ctx, "archive converted",
		"converted", report.Converted,
		"skipped", report.Skipped,
		"duration", report.Duration,
	)
	return report, nil
}

// readDocument reads an entry as UTF-8, replacing invalid sequences with
// U+FFFD.
func readDocument(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(xunicode.UTF8.NewDecoder().Reader(rc))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsClientError reports whether err was caused by the uploaded archive rather
// than by the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrBadArchive) || errors.Is(err, ErrNoDocuments)
}
