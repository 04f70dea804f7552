package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GeoFetchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_geo_fetch_total",
		Help: "Total GeoJSON fetch attempts",
	})
	GeoFetchSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_geo_fetch_success_total",
		Help: "Total GeoJSON fetches that returned a usable feature collection",
	})
	GeoFetchFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_geo_fetch_fail_total",
		Help: "Total GeoJSON fetches that failed (transport, status or body)",
	})
	GeoFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "heatmap_geo_fetch_duration_ms",
		Help:    "GeoJSON fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})
	GeoCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_geo_cache_hits_total",
		Help: "Total GeoJSON cache hits",
	})
	GeoCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_geo_cache_misses_total",
		Help: "Total GeoJSON cache misses",
	})
	StageDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "heatmap_stage_duration_ms",
		Help:    "Pipeline stage duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"stage"})
	StageFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_stage_fail_total",
		Help: "Pipeline stage failures",
	}, []string{"stage"})
	JoinMatched = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heatmap_join_matched_features",
		Help: "Features matched to a statistics row in the last run",
	})
	JoinUnmatchedFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heatmap_join_unmatched_features",
		Help: "Features rendered as no data in the last run",
	})
	JoinUnmatchedRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heatmap_join_unmatched_rows",
		Help: "Statistics rows without a feature in the last run",
	})
	ArtifactBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heatmap_artifact_bytes",
		Help: "Size of the last written artifact",
	})
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_runs_total",
		Help: "Pipeline runs by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(GeoFetchTotal)
	prometheus.MustRegister(GeoFetchSuccessTotal)
	prometheus.MustRegister(GeoFetchFailTotal)
	prometheus.MustRegister(GeoFetchDurationMs)
	prometheus.MustRegister(GeoCacheHitsTotal)
	prometheus.MustRegister(GeoCacheMissesTotal)
	prometheus.MustRegister(StageDurationMs)
	prometheus.MustRegister(StageFailTotal)
	prometheus.MustRegister(JoinMatched)
	prometheus.MustRegister(JoinUnmatchedFeatures)
	prometheus.MustRegister(JoinUnmatchedRows)
	prometheus.MustRegister(ArtifactBytes)
	prometheus.MustRegister(RunsTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：预览服务挂载到 /metrics；一次性生成流程只累计不暴露
func Handler() http.Handler { return promhttp.Handler() }
