package geosource

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"india-heatmap/internal/logger"
	"india-heatmap/internal/metrics"

	"github.com/paulmach/orb/geojson"
)

// 文档注释：地理数据源编排（本地文件 → 缓存 → 网络）
// 背景：默认仅走网络；GEO_FILE 用于离线运行，Redis 缓存用于预览服务频繁重建时减少对上游的请求。
// 约束：缓存读写异常只记日志不影响结果；缓存内容与网络内容使用同一套校验。
type Source struct {
	Client   *http.Client
	Cache    Cache // 可为空
	CacheTTL time.Duration
	File     string // 非空时只读本地文件
}

func (s *Source) Load(ctx context.Context, url string) (*geojson.FeatureCollection, error) {
	l := logger.L()
	if s.File != "" {
		b, err := os.ReadFile(s.File)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		l.Debug("geo_file_read", "path", s.File, "bytes", len(b))
		return Parse(b)
	}
	key := cacheKey(url)
	if s.Cache != nil {
		b, ok, err := s.Cache.Get(ctx, key)
		switch {
		case err != nil:
			l.Warn("geo_cache_get_error", "err", err)
		case ok:
			if fc, perr := Parse(b); perr == nil {
				metrics.GeoCacheHitsTotal.Inc()
				l.Debug("geo_cache_hit", "key", key)
				return fc, nil
			}
			l.Warn("geo_cache_corrupt", "key", key)
		}
		metrics.GeoCacheMissesTotal.Inc()
	}
	fc, body, err := Fetch(ctx, s.Client, url)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		ttl := s.CacheTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if err := s.Cache.Set(ctx, key, body, ttl); err != nil {
			l.Warn("geo_cache_set_error", "err", err)
		}
	}
	return fc, nil
}
