// 预览服务入口：启动时生成一次热力图并提供浏览、重新生成与指标接口
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"india-heatmap/internal/api"
	"india-heatmap/internal/app"
	"india-heatmap/internal/config"
	"india-heatmap/internal/logger"
	"india-heatmap/internal/middleware"
	"india-heatmap/internal/pipeline"
	"india-heatmap/internal/utils"
	"india-heatmap/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok", "version", version.Version, "commit", version.Commit)

	cfg := config.FromEnv()
	deps, closeFn, err := app.Wire(context.Background(), cfg)
	defer closeFn()
	if err != nil {
		l.Error("wire_error", "err", err)
		os.Exit(1)
	}
	p := api.NewPreview(func(ctx context.Context) (*pipeline.Result, error) {
		return pipeline.Run(ctx, cfg, deps)
	}, cfg.OutputPath, os.Getenv("ADMIN_TOKEN"))

	// 首次生成失败不阻止服务启动，可通过 /refresh 重试
	s0, err := p.Generate(context.Background())
	if err != nil {
		l.Error("preview_initial_error", "err", err)
	}
	l.Info("preview_initial", "status", s0.Status)

	mux := http.NewServeMux()
	mux.Handle("/", middleware.Wrap(p.Routes()))

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	s := &http.Server{Addr: addr, Handler: logger.AccessMiddleware(l)(mux), ReadHeaderTimeout: 10 * time.Second}
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "heatmap.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		if err := s.ListenAndServeTLS(certPath, keyPath); err != nil {
			l.Error("server_error", "err", err)
		}
		return
	}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
	}
}
