// 包 geosource：获取印度各邦行政边界的 GeoJSON 要素集合
package geosource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"india-heatmap/internal/logger"
	"india-heatmap/internal/metrics"
	"india-heatmap/internal/version"

	"github.com/paulmach/orb/geojson"
)

// ErrUnavailable：地理数据不可用（网络、状态码或内容异常），调用方应终止整次生成
var ErrUnavailable = errors.New("geographical data unavailable")

// 响应体上限，防止异常数据源占满内存
const maxBody = 64 << 20

// 文档注释：单次 GET 获取要素集合
// 参数：
// - ctx：控制超时与取消；
// - client：可传入共享实例；为空时使用 30s 超时的默认客户端；
// - url：GeoJSON 地址。
// 返回：解析后的要素集合与原始响应体（用于写缓存）；失败时错误包装 ErrUnavailable。
// 约束：不重试；非 200 即失败。
func Fetch(ctx context.Context, client *http.Client, url string) (*geojson.FeatureCollection, []byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/geo+json, application/json")
	t0 := time.Now()
	metrics.GeoFetchTotal.Inc()
	logger.L().Debug("geo_fetch_req", "url", url)
	fc, body, err := do(client, req)
	dur := time.Since(t0).Milliseconds()
	metrics.GeoFetchDurationMs.Observe(float64(dur))
	if err != nil {
		metrics.GeoFetchFailTotal.Inc()
		logger.L().Error("geo_fetch_error", "url", url, "err", err, "duration_ms", dur)
		return nil, nil, err
	}
	metrics.GeoFetchSuccessTotal.Inc()
	logger.L().Debug("geo_fetch_ok", "url", url, "features", len(fc.Features), "bytes", len(body), "duration_ms", dur)
	return fc, body, nil
}

func do(client *http.Client, req *http.Request) (*geojson.FeatureCollection, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	fc, err := Parse(body)
	if err != nil {
		return nil, nil, err
	}
	return fc, body, nil
}
