package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"india-heatmap/internal/geosource"
	"india-heatmap/internal/join"
	"india-heatmap/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGen(path string, err *error) Generator {
	return func(ctx context.Context) (*pipeline.Result, error) {
		if *err != nil {
			return nil, *err
		}
		body := []byte("<html>map</html>")
		if e := os.WriteFile(path, body, 0o644); e != nil {
			return nil, e
		}
		return &pipeline.Result{
			Path:       path,
			Bytes:      len(body),
			Join:       join.Result{Matches: []join.Match{{Name: "Kerala", Found: true}}, UnmatchedFeatures: []string{"Orissa"}},
			NearMisses: []join.NearMiss{{Feature: "Orissa", Row: "orissa"}},
		}, nil
	}
}

func do(h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("x-admin-token", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPreviewServesArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "india_heatmap.html")
	var genErr error
	p := NewPreview(fakeGen(path, &genErr), path, "secret")
	h := p.Routes()

	rec := do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := p.Generate(context.Background())
	require.NoError(t, err)

	rec = do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>map</html>", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("content-type"), "text/html"))

	rec = do(h, http.MethodGet, "/status", "")
	var s summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 1, s.Matched)
	assert.Equal(t, []string{"Orissa"}, s.UnmatchedFeatures)
	assert.Equal(t, []string{"Orissa ~ orissa"}, s.NearMisses)
	assert.Contains(t, s.Status, "Heatmap saved as")
}

func TestRefreshRequiresToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	var genErr error
	h := NewPreview(fakeGen(path, &genErr), path, "secret").Routes()

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/refresh", "").Code)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/refresh", "wrong").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/refresh", "secret").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/refresh", "secret").Code)
}

func TestRefreshEmptyTokenConfigured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	var genErr error
	h := NewPreview(fakeGen(path, &genErr), path, "").Routes()
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/refresh", "").Code)
}

func TestRefreshFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	var genErr error
	h := NewPreview(fakeGen(path, &genErr), path, "secret").Routes()

	genErr = &pipeline.StageError{Stage: pipeline.StageFetch, Err: fmt.Errorf("%w: status 404", geosource.ErrUnavailable)}
	rec := do(h, http.MethodPost, "/refresh", "secret")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load geographical data.")

	genErr = &pipeline.StageError{Stage: pipeline.StageWrite, Err: errors.New("disk full")}
	rec = do(h, http.MethodPost, "/refresh", "secret")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to generate heatmap")
}

func TestRefreshBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	started := make(chan struct{})
	release := make(chan struct{})
	p := NewPreview(func(ctx context.Context) (*pipeline.Result, error) {
		close(started)
		<-release
		return &pipeline.Result{Path: path}, nil
	}, path, "secret")
	done := make(chan struct{})
	go func() {
		_, _ = p.Generate(context.Background())
		close(done)
	}()
	<-started
	rec := do(p.Routes(), http.MethodPost, "/refresh", "secret")
	assert.Equal(t, http.StatusConflict, rec.Code)
	close(release)
	<-done
}

func TestHealthAndMetrics(t *testing.T) {
	h := NewPreview(nil, "x", "").Routes()
	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	rec = do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
