// 包 choropleth：顺序色阶、分桶与着色图层
package choropleth

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/aclements/go-gg/palette/brewer"
	"github.com/aclements/go-moremath/scale"
	mstats "github.com/aclements/go-moremath/stats"
)

var (
	ErrUnknownPalette = errors.New("unknown color palette")
	ErrNoValues       = errors.New("no values to bin")
)

// 分桶方式
const (
	Equal    = "equal"
	Quantile = "quantile"
)

// NoDataColor：未匹配要素的填充色
const NoDataColor = "#000000"

// Scale：n 个桶的顺序色阶；Edges 长度为 n+1，首尾为数据最小/最大值
type Scale struct {
	Palette string
	Method  string
	Colors  []string
	Edges   []float64
	lin     scale.Linear
}

// 文档注释：构建色阶
// 背景：颜色取自 ColorBrewer 的离散调色板（YlOrRd 等），与常见制图库的默认配色一致。
// 约束：values 至少一个有限值；等距分桶覆盖 [min,max]，分位分桶取 i/n 分位点；调色板须提供 bins 级变体。
func NewScale(palette string, bins int, method string, values []float64) (*Scale, error) {
	variants, ok := brewer.ByName[palette]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, palette)
	}
	pal, ok := variants[bins]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no %d-level variant", ErrUnknownPalette, palette, bins)
	}
	var xs []float64
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return nil, ErrNoValues
	}
	s := &Scale{Palette: palette, Method: method}
	for _, c := range pal {
		s.Colors = append(s.Colors, hex(c))
	}
	lo, hi := mstats.Bounds(xs)
	s.lin = scale.Linear{Min: lo, Max: hi, Clamp: true}
	s.Edges = make([]float64, bins+1)
	switch method {
	case Quantile:
		sample := mstats.Sample{Xs: xs}
		for i := range s.Edges {
			s.Edges[i] = sample.Quantile(float64(i) / float64(bins))
		}
		s.Edges[0], s.Edges[bins] = lo, hi
	default:
		s.Method = Equal
		for i := range s.Edges {
			s.Edges[i] = lo + (hi-lo)*float64(i)/float64(bins)
		}
		s.Edges[bins] = hi
	}
	return s, nil
}

// Bins：桶数
func (s *Scale) Bins() int { return len(s.Colors) }

// Bucket：值所在桶（0..n-1），超出范围的值夹到首尾桶
// 约束：两种分桶共用左闭右开区间 [Edges[i], Edges[i+1])，末桶包含上界；恰好落在内部边界上的值归入上方的桶
func (s *Scale) Bucket(v float64) int {
	n := s.Bins()
	if s.lin.Min == s.lin.Max {
		return 0
	}
	var b int
	if s.Method == Quantile {
		// 不大于 v 的内部边界个数
		b = sort.Search(n-1, func(i int) bool { return s.Edges[i+1] > v })
	} else {
		b = int(math.Floor(s.lin.Map(v) * float64(n)))
		if b < 0 {
			b = 0
		}
		if b > n-1 {
			b = n - 1
		}
		// 浮点舍入可能让边界值落到相邻桶，按 Edges 校正
		for b > 0 && v < s.Edges[b] {
			b--
		}
		for b < n-1 && v >= s.Edges[b+1] {
			b++
		}
	}
	return b
}

// Color：值对应的填充色
func (s *Scale) Color(v float64) string { return s.Colors[s.Bucket(v)] }

func hex(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
