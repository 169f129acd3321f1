package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/olchiki/internal/batch"
	"github.com/jusunglee/olchiki/internal/db/sqlite"
	"github.com/jusunglee/olchiki/internal/romanize"
	"github.com/jusunglee/olchiki/internal/transliteration"
)

const adminKey = "test-admin-key"

func newTestServer(t *testing.T) *httptest.Server {
	return newTestServerWith(t, Config{AdminAPIKey: adminKey, RateLimit: 100, ArchiveRateLimit: 100})
}

func newTestRouter(t *testing.T, cfg Config) *Router {
	t.Helper()
	repo, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	processor := batch.NewProcessor(romanize.NewRuleRomanizer(), 2, log)
	return NewRouter(repo, log, processor, cfg)
}

func newTestServerWith(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	router := newTestRouter(t, cfg)
	t.Cleanup(router.Close)

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func uploadArchive(t *testing.T, url string, name string, archive []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("archive", name)
	require.NoError(t, err)
	_, err = fw.Write(archive)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func getWithKey(t *testing.T, url, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLanguages(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/languages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Languages []struct {
			Name   string `json:"name"`
			Script string `json:"script"`
		} `json:"languages"`
		Schemes []string `json:"schemes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Languages, 20)
	assert.Equal(t, "Assamese", body.Languages[0].Name)
	assert.Equal(t, "Bengali", body.Languages[0].Script)
	assert.Equal(t, []string{"itrans", "iso"}, body.Schemes)
}

func TestTransliterateRomanized(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/transliterate", map[string]any{"text": "Santaali", "explain": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Romanized string                 `json:"romanized"`
		OlChiki   string                 `json:"olchiki"`
		Trace     *transliteration.Trace `json:"trace"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Santaali", body.Romanized)
	assert.Equal(t, transliteration.Transliterate("Santaali"), body.OlChiki)
	require.NotNil(t, body.Trace)
	assert.Equal(t, "santāli", body.Trace.Normalized)
	assert.Equal(t, body.OlChiki, body.Trace.Output)
}

func TestTransliterateNativeScript(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/transliterate", map[string]any{"text": "भारत", "language": "hindi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "bhaarata", body["romanized"])
	assert.Equal(t, "ᱵᱷᱟᱨᱚᱛᱚ", body["olchiki"])
	assert.NotContains(t, body, "trace")
}

func TestTransliterateErrors(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/transliterate", map[string]any{"text": "x", "language": "Klingon"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/v1/transliterate", map[string]any{"text": "x", "scheme": "hunterian"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/v1/transliterate", map[string]any{"text": "कऀ", "language": "Hindi"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	raw, err := http.Post(srv.URL+"/api/v1/transliterate", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestArchiveUploadAndHistory(t *testing.T) {
	srv := newTestServer(t)

	archive := zipOf(t, map[string]string{
		"greeting.txt": "नमस्ते",
		"broken.txt":   "कऀ",
		"readme.md":    "skip me",
	})
	resp := uploadArchive(t, srv.URL+"/api/v1/archives?language=Hindi&scheme=itrans", "stories.zip", archive)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), batch.OutputArchiveName)
	assert.Equal(t, "1", resp.Header.Get("X-Batch-ID"))
	assert.Equal(t, "1", resp.Header.Get("X-Documents-Converted"))
	assert.Equal(t, "1", resp.Header.Get("X-Documents-Skipped"))

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "greeting_olchiki.txt", zr.File[0].Name)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	converted, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, transliteration.Transliterate("namaste"), string(converted))

	// A corrupt upload is rejected and still recorded.
	bad := uploadArchive(t, srv.URL+"/api/v1/archives", "bad.zip", []byte("not a zip"))
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	assert.Empty(t, bad.Header.Get("X-Batch-ID"))

	unauthorized := getWithKey(t, srv.URL+"/api/v1/batches", "")
	assert.Equal(t, http.StatusUnauthorized, unauthorized.StatusCode)

	list := getWithKey(t, srv.URL+"/api/v1/batches", adminKey)
	require.Equal(t, http.StatusOK, list.StatusCode)
	var batches struct {
		Data []struct {
			ID     int64  `json:"id"`
			Source string `json:"source"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&batches))
	require.Len(t, batches.Data, 2)
	assert.Equal(t, "bad.zip", batches.Data[0].Source)
	assert.Equal(t, "failed", batches.Data[0].Status)
	assert.Equal(t, "stories.zip", batches.Data[1].Source)

	detail := getWithKey(t, srv.URL+"/api/v1/batches/1", adminKey)
	require.Equal(t, http.StatusOK, detail.StatusCode)
	var got struct {
		Language  string `json:"language"`
		Converted int    `json:"converted"`
		Skipped   int    `json:"skipped"`
		Documents []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"documents"`
	}
	require.NoError(t, json.NewDecoder(detail.Body).Decode(&got))
	assert.Equal(t, "Hindi", got.Language)
	assert.Equal(t, 1, got.Converted)
	assert.Equal(t, 1, got.Skipped)
	require.Len(t, got.Documents, 2)
	for _, d := range got.Documents {
		if d.Name == "broken.txt" {
			assert.Equal(t, "skipped", d.Status)
			assert.Contains(t, d.Error, romanize.ErrUnmappable.Error())
		} else {
			assert.Equal(t, "greeting.txt", d.Name)
			assert.Equal(t, "converted", d.Status)
		}
	}

	missing := getWithKey(t, srv.URL+"/api/v1/batches/999", adminKey)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	invalid := getWithKey(t, srv.URL+"/api/v1/batches/abc", adminKey)
	assert.Equal(t, http.StatusBadRequest, invalid.StatusCode)
}

func TestArchiveUploadMissingField(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/archives", "application/zip", bytes.NewReader(zipOf(t, map[string]string{"a.txt": "ka"})))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestArchiveRateLimitIsSeparate(t *testing.T) {
	srv := newTestServerWith(t, Config{AdminAPIKey: adminKey, RateLimit: 100, ArchiveRateLimit: 1})
	archive := zipOf(t, map[string]string{"a.txt": "santali"})

	first := uploadArchive(t, srv.URL+"/api/v1/archives", "a.zip", archive)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := uploadArchive(t, srv.URL+"/api/v1/archives", "a.zip", archive)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.NotEmpty(t, second.Header.Get("Retry-After"))

	text := postJSON(t, srv.URL+"/api/v1/transliterate", map[string]any{"text": "santali"})
	assert.Equal(t, http.StatusOK, text.StatusCode)
}

func TestRouterGoroutines(t *testing.T) {
	router := newTestRouter(t, Config{AdminAPIKey: adminKey})
	base := runtime.NumGoroutine()

	for range 100 {
		router.Handler()
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), base, "building handlers must not start goroutines")

	router.Close()
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= base-2
	}, time.Second, 10*time.Millisecond, "Close stops both limiter sweeps")
}
