package main

import (
	"context"
	"os"

	"india-heatmap/internal/logger"
	"india-heatmap/internal/stats"
	"india-heatmap/internal/store"
	"india-heatmap/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：把内置统计表写入 PostgreSQL
// 背景：STATS_SOURCE=postgres 时流程从 _heatmap_regions 读取；本命令建表并导入内置数据作为起点。
// 约束：重名行只写首次出现；STATS_SEED_RESET=true 时先清空再导入。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	st, err := store.Open(utils.BuildPostgresDSNFromEnv())
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	ctx := context.Background()
	if err := st.Prepare(ctx); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	if os.Getenv("STATS_SEED_RESET") == "true" {
		if err := st.ClearRegions(ctx); err != nil {
			l.Error("stats_seed_reset_error", "err", err)
			os.Exit(1)
		}
		l.Info("stats_seed_reset")
	}
	rows, dups := stats.Default().Unique()
	if len(dups) > 0 {
		l.Warn("stats_duplicates_dropped", "regions", dups)
	}
	n, err := st.UpsertRegions(ctx, rows)
	if err != nil {
		l.Error("stats_seed_error", "err", err)
		os.Exit(1)
	}
	l.Info("stats_seed_done", "rows", n)
}
