// 包 app：按配置装配流程依赖（地理数据缓存、统计来源），供各命令入口共用
package app

import (
	"context"
	"fmt"
	"net/http"

	"india-heatmap/internal/config"
	"india-heatmap/internal/geosource"
	"india-heatmap/internal/logger"
	"india-heatmap/internal/pipeline"
	"india-heatmap/internal/store"
	"india-heatmap/internal/utils"
)

// 文档注释：装配依赖
// 背景：Redis 只是加速手段，未启用或连接失败时退化为进程内 LRU；统计来源选 postgres 时数据库不可用则返回错误。
// 返回：Deps 与释放连接的 closer（总是非 nil）。
func Wire(ctx context.Context, cfg config.Config) (pipeline.Deps, func(), error) {
	l := logger.L()
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	src := &geosource.Source{
		Client:   &http.Client{Timeout: cfg.FetchTimeout},
		CacheTTL: cfg.GeoCacheTTL,
		File:     cfg.GeoFile,
	}
	if cfg.RedisEnable {
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			_ = rc.Close()
		} else {
			l.Info("redis_ping_ok")
			src.Cache = geosource.NewRedisCache(rc)
			closers = append(closers, func() { _ = rc.Close() })
		}
	} else {
		l.Info("redis_disabled")
	}
	if src.Cache == nil {
		src.Cache = geosource.NewLRU(4)
	}
	deps := pipeline.Deps{Geo: src}

	if cfg.StatsSource == config.StatsPostgres {
		st, err := store.Open(utils.BuildPostgresDSNFromEnv())
		if err != nil {
			closeAll()
			return pipeline.Deps{}, func() {}, fmt.Errorf("open stats db: %w", err)
		}
		closers = append(closers, func() { _ = st.Close() })
		if err := st.Prepare(ctx); err != nil {
			closeAll()
			return pipeline.Deps{}, func() {}, fmt.Errorf("prepare stats db: %w", err)
		}
		l.Info("db_open_ok")
		deps.Stats = st
	}
	return deps, closeAll, nil
}
