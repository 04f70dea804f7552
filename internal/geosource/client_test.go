package geosource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "states.geojson"))
	require.NoError(t, err)
	return b
}

func serve(t *testing.T, status int, body []byte) (*httptest.Server, *int) {
	t.Helper()
	hits := new(int)
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*hits++
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func TestFetchParsesFeatureCollection(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, fixture(t))
	fc, body, err := Fetch(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 5)
	assert.NotEmpty(t, body)
	assert.Equal(t, "Kerala", fc.Features[0].Properties.MustString("NAME_1"))
}

func TestFetchFailuresAreUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, "missing"},
		{"server error", http.StatusInternalServerError, ""},
		{"malformed json", http.StatusOK, "{not json"},
		{"wrong type", http.StatusOK, `{"type":"Feature","properties":{},"geometry":null}`},
		{"empty collection", http.StatusOK, `{"type":"FeatureCollection","features":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := serve(t, tt.status, []byte(tt.body))
			fc, _, err := Fetch(context.Background(), srv.Client(), srv.URL)
			require.Error(t, err)
			assert.Nil(t, fc)
			assert.True(t, errors.Is(err, ErrUnavailable))
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, _, err := Fetch(context.Background(), &http.Client{Timeout: time.Second}, url)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchHonoursContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err := Fetch(ctx, srv.Client(), srv.URL)
	assert.ErrorIs(t, err, ErrUnavailable)
}

type memCache struct {
	mu     sync.Mutex
	m      map[string][]byte
	getErr error
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.m[key]
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, body []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = body
	return nil
}

func TestSourceUsesCache(t *testing.T) {
	srv, hits := serve(t, http.StatusOK, fixture(t))
	cache := &memCache{m: map[string][]byte{}}
	s := &Source{Client: srv.Client(), Cache: cache}

	_, err := s.Load(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = s.Load(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, *hits)
	assert.Contains(t, cache.m, "geojson:"+srv.URL)
}

func TestSourceIgnoresCacheErrorsAndCorruptEntries(t *testing.T) {
	srv, hits := serve(t, http.StatusOK, fixture(t))

	broken := &memCache{m: map[string][]byte{}, getErr: errors.New("redis down")}
	_, err := (&Source{Client: srv.Client(), Cache: broken}).Load(context.Background(), srv.URL)
	require.NoError(t, err)

	corrupt := &memCache{m: map[string][]byte{"geojson:" + srv.URL: []byte("garbage")}}
	_, err = (&Source{Client: srv.Client(), Cache: corrupt}).Load(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 2, *hits)
}

func TestSourceReadsLocalFile(t *testing.T) {
	s := &Source{File: filepath.Join("testdata", "states.geojson")}
	fc, err := s.Load(context.Background(), "http://unused.invalid")
	require.NoError(t, err)
	assert.Len(t, fc.Features, 5)

	s.File = filepath.Join(t.TempDir(), "missing.geojson")
	_, err = s.Load(context.Background(), "http://unused.invalid")
	assert.ErrorIs(t, err, ErrUnavailable)
}
