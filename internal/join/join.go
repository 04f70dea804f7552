// 包 join：按区域名把统计行关联到地理要素
//
// 匹配只做精确、区分大小写的字符串比较，不做模糊匹配也没有别名表。
// 名称约定不一致（大小写、直辖区命名、变音符号）会让要素落入"无数据"，
// 这类情况通过 Result 的未匹配列表与 NearMisses 暴露出来，而不是被悄悄修正。
package join

import (
	"india-heatmap/internal/stats"

	"github.com/paulmach/orb/geojson"
)

// Index：区域名 → 指标
type Index struct {
	m     map[string]float64
	names []string // 表内顺序，用于稳定输出未匹配行
}

// NewIndex：重名时保留首次出现（与 stats.Prepare 一致）
func NewIndex(t stats.Table) *Index {
	ix := &Index{m: make(map[string]float64, len(t))}
	for _, r := range t {
		if _, ok := ix.m[r.Name]; ok {
			continue
		}
		ix.m[r.Name] = r.Metric
		ix.names = append(ix.names, r.Name)
	}
	return ix
}

// Resolve：精确查找；未命中返回 ok=false
func (ix *Index) Resolve(name string) (float64, bool) {
	v, ok := ix.m[name]
	return v, ok
}

func (ix *Index) Len() int { return len(ix.names) }

// Resolve：对单张表的一次性查找
func Resolve(name string, t stats.Table) (float64, bool) {
	for _, r := range t {
		if r.Name == name {
			return r.Metric, true
		}
	}
	return 0, false
}

// Match：单个要素的关联结果；Found 为假时按"无数据"渲染
type Match struct {
	Feature int
	Name    string
	Metric  float64
	Found   bool
}

// Result：整个要素集合的关联结果
type Result struct {
	Matches           []Match  // 与要素顺序一一对应
	UnmatchedFeatures []string // 有名称但未命中的要素；缺少名称属性的要素记为空串
	UnmatchedRows     []string // 没有任何要素引用的统计行，渲染时丢弃
}

// Matched：命中的要素数
func (r Result) Matched() int {
	n := 0
	for _, m := range r.Matches {
		if m.Found {
			n++
		}
	}
	return n
}

// Join：按 key 属性逐个要素查找
// 约束：属性缺失或不是字符串时视为未命中；同名要素（多面拆分的情况）都会命中同一行
func Join(fc *geojson.FeatureCollection, key string, ix *Index) Result {
	var res Result
	used := make(map[string]bool, ix.Len())
	for i, f := range fc.Features {
		name, _ := f.Properties[key].(string)
		m := Match{Feature: i, Name: name}
		if v, ok := ix.Resolve(name); ok && name != "" {
			m.Metric = v
			m.Found = true
			used[name] = true
		} else {
			res.UnmatchedFeatures = append(res.UnmatchedFeatures, name)
		}
		res.Matches = append(res.Matches, m)
	}
	for _, n := range ix.names {
		if !used[n] {
			res.UnmatchedRows = append(res.UnmatchedRows, n)
		}
	}
	return res
}
