// 包 api：预览服务的 HTTP 路由，主入口只负责装配与监听
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"india-heatmap/internal/logger"
	"india-heatmap/internal/metrics"
	"india-heatmap/internal/pipeline"
)

// Generator：执行一次生成，通常为 pipeline.Run 的闭包
type Generator func(ctx context.Context) (*pipeline.Result, error)

// 生成摘要：对外返回必要字段
type summary struct {
	Status            string   `json:"status"`
	Path              string   `json:"path"`
	Bytes             int      `json:"bytes,omitempty"`
	Matched           int      `json:"matched"`
	UnmatchedFeatures []string `json:"unmatched_features,omitempty"`
	UnmatchedRows     []string `json:"unmatched_rows,omitempty"`
	NearMisses        []string `json:"near_misses,omitempty"`
	GeneratedAt       string   `json:"generated_at,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// Preview：持有最近一次生成结果；重新生成串行执行
type Preview struct {
	gen   Generator
	path  string
	token string

	run  sync.Mutex
	mu   sync.RWMutex
	last summary
}

func NewPreview(gen Generator, path, token string) *Preview {
	return &Preview{gen: gen, path: path, token: token}
}

// 文档注释：执行一次生成并记录摘要
// 约束：已有生成在进行时立即返回 ErrBusy，不排队。
func (p *Preview) Generate(ctx context.Context) (summary, error) {
	if !p.run.TryLock() {
		return summary{}, ErrBusy
	}
	defer p.run.Unlock()
	res, err := p.gen(ctx)
	s := summary{Status: pipeline.StatusLine(p.path, err), Path: p.path}
	if err != nil {
		s.Error = err.Error()
	} else {
		s.Bytes = res.Bytes
		s.Matched = res.Join.Matched()
		s.UnmatchedFeatures = res.Join.UnmatchedFeatures
		s.UnmatchedRows = res.Join.UnmatchedRows
		for _, nm := range res.NearMisses {
			s.NearMisses = append(s.NearMisses, nm.Feature+" ~ "+nm.Row)
		}
		s.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}
	p.mu.Lock()
	p.last = s
	p.mu.Unlock()
	return s, err
}

// ErrBusy：已有生成在进行
var ErrBusy = errors.New("generation already running")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// 构建并返回路由
func (p *Preview) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile(p.path)
		if err != nil {
			p.mu.RLock()
			s := p.last
			p.mu.RUnlock()
			if s.Status == "" {
				s.Status = "Heatmap not generated yet."
			}
			writeJSON(w, http.StatusServiceUnavailable, s)
			return
		}
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write(b)
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		p.mu.RLock()
		s := p.last
		p.mu.RUnlock()
		writeJSON(w, http.StatusOK, s)
	})
	mux.HandleFunc("POST /refresh", func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if t == "" || t != p.token {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		s, err := p.Generate(r.Context())
		switch {
		case errors.Is(err, ErrBusy):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case pipeline.IsGeoUnavailable(err):
			writeJSON(w, http.StatusBadGateway, s)
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, s)
		default:
			logger.L().Info("preview_refreshed", "bytes", s.Bytes)
			writeJSON(w, http.StatusOK, s)
		}
	})
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
