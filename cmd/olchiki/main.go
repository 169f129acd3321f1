package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jusunglee/olchiki/internal/batch"
	"github.com/jusunglee/olchiki/internal/db"
	"github.com/jusunglee/olchiki/internal/logger"
	"github.com/jusunglee/olchiki/internal/romanize"
	"github.com/jusunglee/olchiki/internal/storage"
	"github.com/jusunglee/olchiki/internal/transliteration"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()
	logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, os.Args[1:], os.Stdin, os.Stdout)
}

type config struct {
	language        string
	scheme          string
	romanizer       string
	llmModel        string
	anthropicAPIKey string
	googleAPIKey    string
	archive         string
	output          string
	concurrency     int64
	databaseURL     string
	explain         bool
	inputs          []string
}

func parseFlags(args []string) (config, error) {
	fs_ := ff.NewFlagSet("olchiki")

	var (
		language        = fs_.StringLong("language", "", "Source language of native-script input; empty for romanized input")
		scheme          = fs_.StringLong("scheme", string(romanize.ITRANS), "Intermediate romanization scheme: itrans, or iso (also iso15919, iast)")
		romanizer       = fs_.StringEnumLong("romanizer", "Romanizer for native-script input", romanize.Providers...)
		llmModel        = fs_.StringLong("llm-model", "", "LLM model name (provider default when empty)")
		anthropicAPIKey = fs_.StringLong("anthropic-api-key", "", "Anthropic API key")
		googleAPIKey    = fs_.StringLong("google-api-key", "", "Google API key")
		archive         = fs_.StringLong("archive", "", "Zip archive of .txt documents to convert")
		output          = fs_.StringLong("output", "", "Output file (archive mode defaults to "+batch.OutputArchiveName+")")
		concurrency     = fs_.Int64Long("concurrency", 4, "Documents converted at once in archive mode")
		databaseURL     = fs_.StringLong("database-url", "", "Record archive runs in this SQLite path or PostgreSQL URL")
		explain         = fs_.BoolLong("explain", "Print each engine stage as JSON instead of the converted text")
	)

	if err := ff.Parse(fs_, args, ff.WithEnvVarPrefix("OLCHIKI")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs_))
		return config{}, fmt.Errorf("parsing flags: %w", err)
	}

	return config{
		language:        *language,
		scheme:          *scheme,
		romanizer:       *romanizer,
		llmModel:        *llmModel,
		anthropicAPIKey: *anthropicAPIKey,
		googleAPIKey:    *googleAPIKey,
		archive:         *archive,
		output:          *output,
		concurrency:     *concurrency,
		databaseURL:     *databaseURL,
		explain:         *explain,
		inputs:          fs_.GetArgs(),
	}, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}

	opts, err := options(cfg)
	if err != nil {
		return err
	}

	var r romanize.Romanizer
	if opts.Language != nil {
		r, err = romanize.NewFromConfig(ctx, romanize.ProviderConfig{
			Provider:        cfg.romanizer,
			Model:           cfg.llmModel,
			AnthropicAPIKey: cfg.anthropicAPIKey,
			GoogleAPIKey:    cfg.googleAPIKey,
		})
		if err != nil {
			return err
		}
	}
	processor := batch.NewProcessor(r, int(cfg.concurrency), slog.Default())

	if cfg.archive != "" {
		return convertArchive(ctx, processor, cfg, opts)
	}
	return convertText(ctx, processor, cfg, opts, stdin, stdout)
}

func options(cfg config) (batch.Options, error) {
	scheme, err := romanize.ParseScheme(cfg.scheme)
	if err != nil {
		return batch.Options{}, err
	}
	opts := batch.Options{Scheme: scheme}
	if cfg.language != "" {
		l, err := romanize.LookupLanguage(cfg.language)
		if err != nil {
			return batch.Options{}, err
		}
		opts.Language = &l
	}
	return opts, nil
}

func convertText(ctx context.Context, processor *batch.Processor, cfg config, opts batch.Options, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	switch len(cfg.inputs) {
	case 0:
	case 1:
		f, err := os.Open(cfg.inputs[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	default:
		return errors.New("at most one input file may be given; use --archive for many documents")
	}

	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	conv, err := processor.Convert(ctx, string(text), opts)
	if err != nil {
		return err
	}

	out := stdout
	if cfg.output != "" {
		f, err := os.Create(cfg.output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if cfg.explain {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(transliteration.Explain(conv.Romanized))
	}

	if _, err := io.WriteString(out, conv.OlChiki); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func convertArchive(ctx context.Context, processor *batch.Processor, cfg config, opts batch.Options) error {
	in, err := os.Open(cfg.archive)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	var repo db.Repository
	if cfg.databaseURL != "" {
		repo, _, err = storage.Open(ctx, cfg.databaseURL)
		if err != nil {
			return err
		}
		defer repo.Close()
	}

	outPath := cfg.output
	if outPath == "" {
		outPath = batch.OutputArchiveName
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	source := filepath.Base(cfg.archive)
	report, err := processor.ProcessArchive(ctx, in, info.Size(), opts, out)
	if err != nil {
		out.Close()
		os.Remove(outPath)
		if repo != nil {
			if _, recErr := batch.RecordFailure(ctx, repo, source, opts, err); recErr != nil {
				slog.ErrorContext(ctx, "recording failed batch", "error", recErr)
			}
		}
		return err
	}

	for _, d := range report.Documents {
		if d.Status == batch.StatusSkipped {
			slog.WarnContext(ctx, "skipped document", "name", d.Name, "error", d.Error)
		}
	}

	attrs := []any{"output", outPath, "converted", report.Converted, "skipped", report.Skipped}
	if repo != nil {
		saved, err := batch.SaveReport(ctx, repo, source, report)
		if err != nil {
			return err
		}
		attrs = append(attrs, "batch_id", saved.ID)
	}
	slog.InfoContext(ctx, "conversion complete", attrs...)
	return nil
}
