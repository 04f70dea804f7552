package canvas

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTiles = errors.New("unknown tile layer")

// Tiles：底图瓦片
type Tiles struct {
	Name        string
	URL         string
	Attribution string
	MaxZoom     int
}

var knownTiles = map[string]Tiles{
	"openstreetmap": {
		Name:        "openstreetmap",
		URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     19,
	},
	"cartodb positron": {
		Name:        "cartodbpositron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		MaxZoom:     20,
	},
	"cartodb dark_matter": {
		Name:        "cartodbdark_matter",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		MaxZoom:     20,
	},
}

// LookupTiles：按名称（不区分大小写）查找底图；含 {z} 占位符的值按原样作为瓦片 URL 模板
func LookupTiles(name string) (Tiles, error) {
	if t, ok := knownTiles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	if strings.Contains(name, "{z}") {
		return Tiles{Name: "custom", URL: name, MaxZoom: 18}, nil
	}
	return Tiles{}, fmt.Errorf("%w: %q", ErrUnknownTiles, name)
}
