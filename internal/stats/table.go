// 包 stats：区域统计表及其边界情况处理（缺失值均值填充、空表占位行、重名去重）
package stats

import (
	"context"
	"math"

	mstats "github.com/aclements/go-moremath/stats"
)

// 占位行：空表时使用，与历史输出保持一致
const (
	PlaceholderName   = "IN"
	PlaceholderMetric = 300.0
)

// Record：一行统计数据；Missing 为真时 Metric 无意义
type Record struct {
	Name    string
	Metric  float64
	Missing bool
}

type Table []Record

// Source：统计数据来源（内置表或数据库）
type Source interface {
	Load(ctx context.Context) (Table, error)
}

// Builtin：返回内置表
type Builtin struct{}

func (Builtin) Load(context.Context) (Table, error) { return Default(), nil }

// Present：所有非缺失的指标值，按表内顺序
func (t Table) Present() []float64 {
	var xs []float64
	for _, r := range t {
		if !r.Missing && !math.IsNaN(r.Metric) {
			xs = append(xs, r.Metric)
		}
	}
	return xs
}

// Mean：非缺失指标的算术平均；没有可用值时 ok 为 false
func (t Table) Mean() (float64, bool) {
	xs := t.Present()
	if len(xs) == 0 {
		return 0, false
	}
	return mstats.Mean(xs), true
}

// Report：Prepare 过程中做出的修正，供日志与测试检查
type Report struct {
	Filled      []string // 用均值填充的区域
	FillValue   float64
	Duplicates  []string // 被丢弃的重复区域名
	Placeholder bool
}

// 文档注释：整理统计表
// 背景：渲染前统一处理边界情况，保证下游拿到的每一行都有数值且区域名唯一。
// 约束：空表替换为单行占位；缺失值用其余值的均值填充（全部缺失时用占位值）；重名保留首次出现；不修改入参。
func Prepare(in Table) (Table, Report) {
	var rep Report
	if len(in) == 0 {
		rep.Placeholder = true
		return Table{{Name: PlaceholderName, Metric: PlaceholderMetric}}, rep
	}
	fill, ok := in.Mean()
	if !ok {
		fill = PlaceholderMetric
	}
	rep.FillValue = fill
	out, dups := in.Unique()
	rep.Duplicates = dups
	for i, r := range out {
		if r.Missing || math.IsNaN(r.Metric) {
			rep.Filled = append(rep.Filled, r.Name)
			out[i] = Record{Name: r.Name, Metric: fill}
		}
	}
	return out, rep
}

// Unique：按名称去重，保留首次出现；返回新表与被丢弃的名称
func (t Table) Unique() (Table, []string) {
	seen := make(map[string]bool, len(t))
	out := make(Table, 0, len(t))
	var dups []string
	for _, r := range t {
		if seen[r.Name] {
			dups = append(dups, r.Name)
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out, dups
}
