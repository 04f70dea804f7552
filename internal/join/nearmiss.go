package join

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NearMiss：未匹配要素与未匹配统计行在宽松比较下相同，仅用于诊断
type NearMiss struct {
	Feature string
	Row     string
}

// normalize：大小写折叠、去除变音符号、& 视为 and、合并空白
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	out = strings.ReplaceAll(out, "&", " and ")
	return strings.Join(strings.Fields(out), " ")
}

// NearMisses：列出可能因命名约定不同而漏配的要素/统计行对
// 约束：结果不参与匹配；输出按要素名排序
func (r Result) NearMisses() []NearMiss {
	byKey := make(map[string]string, len(r.UnmatchedRows))
	for _, row := range r.UnmatchedRows {
		k := normalize(row)
		if _, ok := byKey[k]; !ok {
			byKey[k] = row
		}
	}
	var out []NearMiss
	seen := make(map[string]bool)
	for _, f := range r.UnmatchedFeatures {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		if row, ok := byKey[normalize(f)]; ok {
			out = append(out, NearMiss{Feature: f, Row: row})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Feature < out[j].Feature })
	return out
}
