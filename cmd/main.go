// 程序入口：读取配置、装配依赖并生成一次热力图；结果以一行状态输出，进程总是正常退出
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"india-heatmap/internal/app"
	"india-heatmap/internal/config"
	"india-heatmap/internal/logger"
	"india-heatmap/internal/pipeline"
	"india-heatmap/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok", "version", version.Version, "commit", version.Commit)

	cfg := config.FromEnv()
	l.Debug("config_loaded", "geo_url", cfg.GeoURL, "geo_file", cfg.GeoFile, "output", cfg.OutputPath, "stats", cfg.StatsSource)

	ctx := context.Background()
	deps, closeFn, err := app.Wire(ctx, cfg)
	defer closeFn()
	if err != nil {
		l.Error("wire_error", "err", err)
		fmt.Println(pipeline.StatusLine(cfg.OutputPath, err))
		return
	}
	_, err = pipeline.Run(ctx, cfg, deps)
	fmt.Println(pipeline.StatusLine(cfg.OutputPath, err))
}
