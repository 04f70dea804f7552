package choropleth

import (
	"math"
	"strconv"

	"india-heatmap/internal/join"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
)

// 附加到克隆要素上的样式属性
const (
	PropFill   = "_fill"
	PropMetric = "_metric"
	PropBucket = "_bucket"
)

// Options：图层外观
type Options struct {
	Name        string
	FillOpacity float64
	LineOpacity float64
	LineWeight  float64
	LegendLabel string
	Simplify    float64 // Douglas-Peucker 阈值（度），0 关闭
}

// LegendEntry：图例的一格
type LegendEntry struct {
	Color string
	From  float64
	To    float64
	Label string
}

// Legend：标题为指标的可读名称；NoData 为真时额外显示"无数据"一格
type Legend struct {
	Caption string
	Entries []LegendEntry
	NoData  bool
}

// Layer：已着色的要素集合与图例
type Layer struct {
	Options
	Features *geojson.FeatureCollection
	Legend   Legend
	Scale    *Scale
	NoData   int // 以"无数据"渲染的要素数
}

// 文档注释：构建着色图层
// 背景：源要素集合只读；这里逐个克隆要素并写入填充色、指标值与桶号，供模板中的样式函数直接读取。
// 约束：res.Matches 必须与 fc.Features 一一对应（由 join.Join 产生）；未命中要素使用 NoDataColor、桶号 -1。
func Build(fc *geojson.FeatureCollection, res join.Result, sc *Scale, opts Options) *Layer {
	l := &Layer{Options: opts, Scale: sc, Features: geojson.NewFeatureCollection()}
	var dp *simplify.DouglasPeuckerSimplifier
	if opts.Simplify > 0 {
		dp = simplify.DouglasPeucker(opts.Simplify)
	}
	for i, f := range fc.Features {
		nf := geojson.NewFeature(cloneGeometry(f.Geometry, dp))
		nf.ID = f.ID
		nf.Properties = f.Properties.Clone()
		if nf.Properties == nil {
			nf.Properties = geojson.Properties{}
		}
		m := res.Matches[i]
		if m.Found {
			nf.Properties[PropFill] = sc.Color(m.Metric)
			nf.Properties[PropMetric] = m.Metric
			nf.Properties[PropBucket] = sc.Bucket(m.Metric)
		} else {
			nf.Properties[PropFill] = NoDataColor
			nf.Properties[PropMetric] = nil
			nf.Properties[PropBucket] = -1
			l.NoData++
		}
		l.Features.Append(nf)
	}
	l.Legend = buildLegend(opts.LegendLabel, sc, l.NoData > 0)
	return l
}

// Simplified：对要素集合做同样的几何克隆/简化，供边界图层复用
func Simplified(fc *geojson.FeatureCollection, tolerance float64) *geojson.FeatureCollection {
	var dp *simplify.DouglasPeuckerSimplifier
	if tolerance > 0 {
		dp = simplify.DouglasPeucker(tolerance)
	}
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		nf := geojson.NewFeature(cloneGeometry(f.Geometry, dp))
		nf.ID = f.ID
		nf.Properties = f.Properties.Clone()
		out.Append(nf)
	}
	return out
}

func cloneGeometry(g orb.Geometry, dp *simplify.DouglasPeuckerSimplifier) orb.Geometry {
	if g == nil {
		return nil
	}
	c := orb.Clone(g)
	if dp != nil {
		c = dp.Simplify(c)
	}
	return c
}

func buildLegend(caption string, sc *Scale, noData bool) Legend {
	lg := Legend{Caption: caption, NoData: noData}
	for i, c := range sc.Colors {
		from, to := sc.Edges[i], sc.Edges[i+1]
		lg.Entries = append(lg.Entries, LegendEntry{
			Color: c,
			From:  from,
			To:    to,
			Label: FormatValue(from) + " – " + FormatValue(to),
		})
	}
	return lg
}

// FormatValue：图例刻度文字；绝对值不小于 100 时取整，其余保留一位小数
func FormatValue(v float64) string {
	if math.Abs(v) >= 100 {
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
