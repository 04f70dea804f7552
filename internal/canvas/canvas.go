// 包 canvas：基于 Leaflet 的地图画布，按插入顺序叠加图层并序列化为单个 HTML 文档
package canvas

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"io"
	"math"
	"strings"

	"india-heatmap/internal/choropleth"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// IDFunc：生成 DOM/JS 变量名后缀；测试中替换为确定性实现
type IDFunc func() string

// RandomID：默认实现，去掉连字符的 UUID
func RandomID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

// Boundaries：边界轮廓图层，悬停时显示 Field 属性，标签为 Alias
type Boundaries struct {
	Name     string
	Features *geojson.FeatureCollection
	Field    string
	Alias    string
}

type layer struct {
	kind       string
	id         string
	choropleth *choropleth.Layer
	boundaries *Boundaries
}

// 文档注释：地图画布
// 背景：中心、缩放与底图固定，不根据数据范围自动调整视野。
// 约束：图层按添加顺序渲染（后加的在上层）；LayerControl 只列出在它之前添加的图层。
type Canvas struct {
	Title  string
	Center [2]float64 // lat, lon
	Zoom   int
	Tiles  Tiles

	newID  IDFunc
	mapID  string
	tileID string
	layers []layer
}

func New(title string, lat, lon float64, zoom int, tiles Tiles, newID IDFunc) *Canvas {
	if newID == nil {
		newID = RandomID
	}
	return &Canvas{
		Title:  title,
		Center: [2]float64{lat, lon},
		Zoom:   zoom,
		Tiles:  tiles,
		newID:  newID,
		mapID:  "map_" + newID(),
		tileID: "tile_layer_" + newID(),
	}
}

func (c *Canvas) AddChoropleth(l *choropleth.Layer) {
	c.layers = append(c.layers, layer{kind: "choropleth", id: "choropleth_" + c.newID(), choropleth: l})
}

func (c *Canvas) AddBoundaries(b *Boundaries) {
	c.layers = append(c.layers, layer{kind: "boundaries", id: "geo_json_" + c.newID(), boundaries: b})
}

func (c *Canvas) AddLayerControl() {
	c.layers = append(c.layers, layer{kind: "control", id: "layer_control_" + c.newID()})
}

// Layers：已添加图层的种类，按顺序
func (c *Canvas) Layers() []string {
	out := make([]string, len(c.layers))
	for i, l := range c.layers {
		out[i] = l.kind
	}
	return out
}

type overlayView struct {
	Name string
	Var  template.JS
}

type layerView struct {
	Kind string
	Var  template.JS
	Name string
	Data template.JS

	FillOpacity      float64
	LineOpacity      float64
	LineWeight       float64
	HighlightWeight  float64
	HighlightOpacity float64
	Legend           *legendView

	Field string
	Alias string

	Overlays []overlayView
}

type legendView struct {
	ID      string
	Caption string
	Entries []legendEntryView
	NoData  bool
}

type legendEntryView struct {
	Color template.CSS
	Label string
}

type pageView struct {
	Title       string
	MapID       string
	MapVar      template.JS
	TileVar     template.JS
	TileName    string
	Center      [2]float64
	Zoom        int
	TileURL     string
	Attribution template.HTML
	MaxZoom     int
	Layers      []layerView
	Legends     []*legendView
}

//go:embed page.html.tmpl
var pageSrc string

var page = template.Must(template.New("page").Parse(pageSrc))

// Render：把画布写成完整 HTML 文档
func (c *Canvas) Render(w io.Writer) error {
	pv := pageView{
		Title:       c.Title,
		MapID:       c.mapID,
		MapVar:      template.JS(c.mapID),
		TileVar:     template.JS(c.tileID),
		TileName:    c.Tiles.Name,
		Center:      c.Center,
		Zoom:        c.Zoom,
		TileURL:     c.Tiles.URL,
		Attribution: template.HTML(c.Tiles.Attribution),
		MaxZoom:     c.Tiles.MaxZoom,
	}
	var overlays []overlayView
	for _, l := range c.layers {
		lv := layerView{Kind: l.kind, Var: template.JS(l.id)}
		switch l.kind {
		case "choropleth":
			ch := l.choropleth
			data, err := marshal(ch.Features)
			if err != nil {
				return err
			}
			lv.Name = ch.Name
			lv.Data = data
			lv.FillOpacity = ch.FillOpacity
			lv.LineOpacity = ch.LineOpacity
			lv.LineWeight = ch.LineWeight
			lv.HighlightWeight = ch.LineWeight + 2
			lv.HighlightOpacity = minf(math.Round((ch.FillOpacity+0.2)*100)/100, 1)
			lg := &legendView{ID: "legend_" + strings.TrimPrefix(l.id, "choropleth_"), Caption: ch.Legend.Caption, NoData: ch.Legend.NoData}
			for _, e := range ch.Legend.Entries {
				lg.Entries = append(lg.Entries, legendEntryView{Color: template.CSS(e.Color), Label: e.Label})
			}
			lv.Legend = lg
			pv.Legends = append(pv.Legends, lg)
			overlays = append(overlays, overlayView{Name: ch.Name, Var: lv.Var})
		case "boundaries":
			b := l.boundaries
			data, err := marshal(b.Features)
			if err != nil {
				return err
			}
			lv.Name = b.Name
			lv.Data = data
			lv.Field = b.Field
			lv.Alias = b.Alias
			overlays = append(overlays, overlayView{Name: b.Name, Var: lv.Var})
		case "control":
			lv.Overlays = append([]overlayView(nil), overlays...)
		}
		pv.Layers = append(pv.Layers, lv)
	}
	return page.Execute(w, pv)
}

// Bytes：Render 到内存
func (c *Canvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshal：要素集合内嵌为 JS 字面量；json.Marshal 会转义 <、>、&，可安全放入 <script>
func marshal(fc *geojson.FeatureCollection) (template.JS, error) {
	b, err := json.Marshal(fc)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
