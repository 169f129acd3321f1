package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/olchiki/internal/batch"
	"github.com/jusunglee/olchiki/internal/db"
	"github.com/jusunglee/olchiki/internal/db/sqlite"
	"github.com/jusunglee/olchiki/internal/romanize"
	"github.com/jusunglee/olchiki/internal/transliteration"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestTextFromStdin(t *testing.T) {
	out, err := runCLI(t, "santali\n")
	require.NoError(t, err)
	assert.Equal(t, "ᱥᱚᱱᱛᱚᱞᱤ\n", out)
}

func TestTextNativeScript(t *testing.T) {
	out, err := runCLI(t, "भारत", "--language", "hindi")
	require.NoError(t, err)
	assert.Equal(t, "ᱵᱷᱟᱨᱚᱛᱚ", out)

	iso, err := runCLI(t, "भारत", "--language", "hindi", "--scheme", "iso")
	require.NoError(t, err)
	assert.Equal(t, out, iso)
}

func TestSchemeAliases(t *testing.T) {
	for _, alias := range []string{"iso", "iso15919", "IAST", "ISO"} {
		out, err := runCLI(t, "भारत", "--language", "hindi", "--scheme", alias, "--explain")
		require.NoError(t, err, alias)

		var trace transliteration.Trace
		require.NoError(t, json.Unmarshal([]byte(out), &trace), alias)
		assert.Equal(t, "bhārata", trace.Input, alias)
	}
}

func TestTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("ka kha"), 0o644))

	out, err := runCLI(t, "ignored", path)
	require.NoError(t, err)
	assert.Equal(t, transliteration.Transliterate("ka kha"), out)

	_, err = runCLI(t, "", path, path)
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	out, err := runCLI(t, "Santaali", "--explain")
	require.NoError(t, err)

	var trace transliteration.Trace
	require.NoError(t, json.Unmarshal([]byte(out), &trace))
	assert.Equal(t, "Santaali", trace.Input)
	assert.Equal(t, "santāli", trace.Normalized)
	assert.Equal(t, transliteration.Transliterate("Santaali"), trace.Output)
}

func TestInvalidOptions(t *testing.T) {
	_, err := runCLI(t, "x", "--language", "Klingon")
	assert.ErrorIs(t, err, romanize.ErrUnknownLanguage)

	_, err = runCLI(t, "x", "--scheme", "hunterian")
	assert.ErrorIs(t, err, romanize.ErrUnknownScheme)

	_, err = runCLI(t, "x", "--language", "hindi", "--romanizer", "anthropic")
	assert.ErrorContains(t, err, "anthropic-api-key")
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestArchiveMode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "stories.zip")
	out := filepath.Join(dir, "out.zip")
	dbPath := filepath.Join(dir, "history.db")
	writeZip(t, in, map[string]string{"a.txt": "नमस्ते", "b.txt": "कऀ"})

	_, err := runCLI(t, "", "--archive", in, "--output", out, "--language", "Hindi", "--database-url", dbPath)
	require.NoError(t, err)

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.Equal(t, "a_olchiki.txt", zr.File[0].Name)

	repo, err := sqlite.New(context.Background(), dbPath)
	require.NoError(t, err)
	defer repo.Close()
	batches, err := repo.ListBatches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "stories.zip", batches[0].Source)
	assert.Equal(t, db.BatchCompleted, batches[0].Status)
	assert.Equal(t, int32(1), batches[0].Converted)
	assert.Equal(t, int32(1), batches[0].Skipped)
}

func TestArchiveModeBadArchive(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.zip")
	out := filepath.Join(dir, "out.zip")
	require.NoError(t, os.WriteFile(in, []byte("not a zip"), 0o644))

	_, err := runCLI(t, "", "--archive", in, "--output", out)
	assert.ErrorIs(t, err, batch.ErrBadArchive)
	assert.NoFileExists(t, out)
}
