// 包 pipeline：热力图生成流程
//
// 严格线性：获取地理数据 → 读取统计表 → 处理边界情况 → 底图 → 着色图层 → 边界与图层控件 → 写出。
// 任一阶段失败即停止，不重试、不产生部分输出。
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"time"

	"india-heatmap/internal/artifact"
	"india-heatmap/internal/canvas"
	"india-heatmap/internal/choropleth"
	"india-heatmap/internal/config"
	"india-heatmap/internal/geosource"
	"india-heatmap/internal/join"
	"india-heatmap/internal/logger"
	"india-heatmap/internal/metrics"
	"india-heatmap/internal/stats"

	"github.com/paulmach/orb/geojson"
)

// 阶段名
const (
	StageConfig     = "config"
	StageFetch      = "fetch"
	StagePrepare    = "prepare"
	StageEdgeCases  = "edge_cases"
	StageBase       = "render_base"
	StageChoropleth = "render_choropleth"
	StageOverlay    = "render_overlay"
	StageWrite      = "write"
)

// StageError：携带失败阶段的错误
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// GeoLoader：地理数据来源，geosource.Source 为默认实现
type GeoLoader interface {
	Load(ctx context.Context, url string) (*geojson.FeatureCollection, error)
}

// Deps：可替换的外部协作者；零值字段使用默认实现
type Deps struct {
	Geo   GeoLoader
	Stats stats.Source
	NewID canvas.IDFunc
}

// Result：一次成功生成的摘要
type Result struct {
	Path       string
	Bytes      int
	Table      stats.Table
	Prep       stats.Report
	Join       join.Result
	NearMisses []join.NearMiss
	Legend     choropleth.Legend
}

// 文档注释：执行一次完整生成
// 参数：cfg 须能通过 Validate；deps 中为空的协作者按 cfg 构造默认实现。
// 返回：成功时返回摘要；失败时返回 *StageError，可用 errors.Is 判断 geosource.ErrUnavailable 等哨兵错误。
func Run(ctx context.Context, cfg config.Config, deps Deps) (res *Result, err error) {
	l := logger.L()
	defer func() {
		if err != nil {
			metrics.RunsTotal.WithLabelValues("fail").Inc()
			return
		}
		metrics.RunsTotal.WithLabelValues("ok").Inc()
	}()
	if err := cfg.Validate(); err != nil {
		return nil, fail(StageConfig, err)
	}
	tiles, err := canvas.LookupTiles(cfg.TileLayer)
	if err != nil {
		return nil, fail(StageConfig, err)
	}
	if deps.Geo == nil {
		deps.Geo = &geosource.Source{Client: &http.Client{Timeout: cfg.FetchTimeout}, File: cfg.GeoFile}
	}
	if deps.Stats == nil {
		deps.Stats = stats.Builtin{}
	}

	var fc *geojson.FeatureCollection
	if err := stage(StageFetch, func() (e error) {
		fc, e = deps.Geo.Load(ctx, cfg.GeoURL)
		return e
	}); err != nil {
		return nil, err
	}
	l.Info("geo_loaded", "features", len(fc.Features))

	var raw stats.Table
	if err := stage(StagePrepare, func() (e error) {
		raw, e = deps.Stats.Load(ctx)
		return e
	}); err != nil {
		return nil, err
	}

	res = &Result{Path: cfg.OutputPath}
	_ = stage(StageEdgeCases, func() error {
		res.Table, res.Prep = stats.Prepare(raw)
		return nil
	})
	if res.Prep.Placeholder {
		l.Warn("stats_empty_placeholder", "name", stats.PlaceholderName, "metric", stats.PlaceholderMetric)
	}
	if len(res.Prep.Filled) > 0 {
		l.Warn("stats_missing_filled", "regions", res.Prep.Filled, "mean", res.Prep.FillValue)
	}
	if len(res.Prep.Duplicates) > 0 {
		l.Warn("stats_duplicates_dropped", "regions", res.Prep.Duplicates)
	}

	var cv *canvas.Canvas
	_ = stage(StageBase, func() error {
		cv = canvas.New(cfg.Title, cfg.Center.Lat, cfg.Center.Lon, cfg.Zoom, tiles, deps.NewID)
		return nil
	})

	if err := stage(StageChoropleth, func() error {
		sc, e := choropleth.NewScale(cfg.ColorScale, cfg.Bins, cfg.Binning, res.Table.Present())
		if e != nil {
			return e
		}
		res.Join = join.Join(fc, cfg.KeyProperty, join.NewIndex(res.Table))
		layer := choropleth.Build(fc, res.Join, sc, choropleth.Options{
			Name:        cfg.LayerName,
			FillOpacity: cfg.FillOpacity,
			LineOpacity: cfg.LineOpacity,
			LineWeight:  cfg.LineWeight,
			LegendLabel: cfg.LegendLabel,
			Simplify:    cfg.SimplifyTolerance,
		})
		res.Legend = layer.Legend
		cv.AddChoropleth(layer)
		return nil
	}); err != nil {
		return nil, err
	}
	reportJoin(res)

	_ = stage(StageOverlay, func() error {
		cv.AddBoundaries(&canvas.Boundaries{
			Name:     cfg.BoundaryName,
			Features: choropleth.Simplified(fc, cfg.SimplifyTolerance),
			Field:    cfg.KeyProperty,
			Alias:    cfg.TooltipAlias,
		})
		cv.AddLayerControl()
		return nil
	})

	if err := stage(StageWrite, func() error {
		b, e := cv.Bytes()
		if e != nil {
			return e
		}
		res.Bytes = len(b)
		return artifact.Write(cfg.OutputPath, b)
	}); err != nil {
		return nil, err
	}
	l.Info("artifact_written", "path", cfg.OutputPath, "bytes", res.Bytes)
	return res, nil
}

func reportJoin(res *Result) {
	l := logger.L()
	matched := res.Join.Matched()
	metrics.JoinMatched.Set(float64(matched))
	metrics.JoinUnmatchedFeatures.Set(float64(len(res.Join.UnmatchedFeatures)))
	metrics.JoinUnmatchedRows.Set(float64(len(res.Join.UnmatchedRows)))
	l.Info("join_done", "matched", matched, "unmatched_features", len(res.Join.UnmatchedFeatures), "unmatched_rows", len(res.Join.UnmatchedRows))
	for _, n := range res.Join.UnmatchedFeatures {
		l.Debug("join_unmatched_feature", "name", n)
	}
	for _, n := range res.Join.UnmatchedRows {
		l.Debug("join_unmatched_row", "name", n)
	}
	res.NearMisses = res.Join.NearMisses()
	for _, nm := range res.NearMisses {
		l.Warn("join_near_miss", "feature", nm.Feature, "row", nm.Row)
	}
}

func stage(name string, fn func() error) error {
	t0 := time.Now()
	err := fn()
	metrics.StageDurationMs.WithLabelValues(name).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		return fail(name, err)
	}
	return nil
}

func fail(name string, err error) error {
	metrics.StageFailTotal.WithLabelValues(name).Inc()
	logger.L().Error("stage_error", "stage", name, "err", err)
	return &StageError{Stage: name, Err: err}
}

// IsGeoUnavailable：失败是否源于地理数据不可用
func IsGeoUnavailable(err error) bool { return errors.Is(err, geosource.ErrUnavailable) }
