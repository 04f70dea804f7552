// 包 config：热力图生成的全部参数集中在 Config；默认值即原始固定常量，环境变量仅做可选覆盖
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultGeoURL     = "https://raw.githubusercontent.com/geohacker/india/master/state/india_state.geojson"
	DefaultOutputPath = "india_heatmap.html"
	DefaultLegend     = "Population Density (per sq km)"
)

// 统计数据来源
const (
	StatsBuiltin  = "builtin"
	StatsPostgres = "postgres"
)

// 分桶方式
const (
	BinningEqual    = "equal"
	BinningQuantile = "quantile"
)

// LatLon：WGS84 坐标
type LatLon struct {
	Lat float64
	Lon float64
}

// 文档注释：生成配置
// 背景：把颜色刻度、透明度、图例文字、底图、中心与缩放等原本散落在调用参数中的常量收敛为命名字段。
// 约束：Validate 通过后才可用于渲染；零值不可用，请从 Default 或 FromEnv 获取。
type Config struct {
	GeoURL      string
	GeoFile     string // 非空时从本地文件读取 GeoJSON，跳过网络
	KeyProperty string // 要素属性中的区域名字段

	OutputPath string
	Title      string

	ColorScale  string
	Bins        int
	Binning     string
	FillOpacity float64
	LineOpacity float64
	LineWeight  float64
	LegendLabel string

	TileLayer string
	Center    LatLon
	Zoom      int

	LayerName    string
	BoundaryName string
	TooltipAlias string

	SimplifyTolerance float64 // 0 表示不简化

	FetchTimeout time.Duration
	GeoCacheTTL  time.Duration
	RedisEnable  bool
	StatsSource  string
}

// Default：与原始脚本一致的固定参数
func Default() Config {
	return Config{
		GeoURL:       DefaultGeoURL,
		KeyProperty:  "NAME_1",
		OutputPath:   DefaultOutputPath,
		Title:        "India Population Density",
		ColorScale:   "YlOrRd",
		Bins:         6,
		Binning:      BinningEqual,
		FillOpacity:  0.7,
		LineOpacity:  0.2,
		LineWeight:   1,
		LegendLabel:  DefaultLegend,
		TileLayer:    "OpenStreetMap",
		Center:       LatLon{Lat: 20.5937, Lon: 78.9629},
		Zoom:         5,
		LayerName:    "Population Density Heatmap",
		BoundaryName: "State Boundaries",
		TooltipAlias: "State Name:",
		FetchTimeout: 30 * time.Second,
		GeoCacheTTL:  24 * time.Hour,
		StatsSource:  StatsBuiltin,
	}
}

// FromEnv：在默认值上叠加环境变量
// 约束：数值解析失败时静默保留默认值，与其余环境变量读取方式保持一致；合法性交给 Validate
func FromEnv() Config {
	c := Default()
	str(&c.GeoURL, "GEO_URL")
	str(&c.GeoFile, "GEO_FILE")
	str(&c.KeyProperty, "GEO_KEY_PROPERTY")
	str(&c.OutputPath, "OUTPUT_PATH")
	str(&c.Title, "MAP_TITLE")
	str(&c.ColorScale, "COLOR_SCALE")
	str(&c.Binning, "BINNING")
	str(&c.LegendLabel, "LEGEND_LABEL")
	str(&c.TileLayer, "TILE_LAYER")
	str(&c.StatsSource, "STATS_SOURCE")
	if v := os.Getenv("BINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Bins = n
		}
	}
	if v := os.Getenv("ZOOM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Zoom = n
		}
	}
	float(&c.FillOpacity, "FILL_OPACITY")
	float(&c.LineOpacity, "LINE_OPACITY")
	float(&c.Center.Lat, "CENTER_LAT")
	float(&c.Center.Lon, "CENTER_LON")
	float(&c.SimplifyTolerance, "SIMPLIFY_TOLERANCE")
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.FetchTimeout = d
		}
	}
	if v := os.Getenv("GEO_CACHE_TTL_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.GeoCacheTTL = time.Duration(n) * time.Second
		}
	}
	c.RedisEnable = os.Getenv("REDIS_ENABLE") == "true"
	return c
}

func str(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func float(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

var ErrInvalid = errors.New("invalid config")

// Validate：检查取值范围；调色板名称的存在性由 choropleth 在构建刻度时校验
func (c Config) Validate() error {
	var problems []string
	if c.GeoURL == "" && c.GeoFile == "" {
		problems = append(problems, "geo url and geo file are both empty")
	}
	if c.KeyProperty == "" {
		problems = append(problems, "key property is empty")
	}
	if c.OutputPath == "" {
		problems = append(problems, "output path is empty")
	}
	if c.Bins < 3 || c.Bins > 9 {
		problems = append(problems, fmt.Sprintf("bins %d out of range [3,9]", c.Bins))
	}
	if c.Binning != BinningEqual && c.Binning != BinningQuantile {
		problems = append(problems, fmt.Sprintf("unknown binning %q", c.Binning))
	}
	if c.FillOpacity < 0 || c.FillOpacity > 1 {
		problems = append(problems, fmt.Sprintf("fill opacity %g out of range [0,1]", c.FillOpacity))
	}
	if c.LineOpacity < 0 || c.LineOpacity > 1 {
		problems = append(problems, fmt.Sprintf("line opacity %g out of range [0,1]", c.LineOpacity))
	}
	if c.Zoom < 0 || c.Zoom > 19 {
		problems = append(problems, fmt.Sprintf("zoom %d out of range [0,19]", c.Zoom))
	}
	if c.Center.Lat < -90 || c.Center.Lat > 90 || c.Center.Lon < -180 || c.Center.Lon > 180 {
		problems = append(problems, "center outside WGS84 bounds")
	}
	if c.SimplifyTolerance < 0 {
		problems = append(problems, "simplify tolerance is negative")
	}
	if c.StatsSource != StatsBuiltin && c.StatsSource != StatsPostgres {
		problems = append(problems, fmt.Sprintf("unknown stats source %q", c.StatsSource))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
