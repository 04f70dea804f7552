package geosource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Parse：把响应体解析为 FeatureCollection
// 约束：非 JSON、类型不是 FeatureCollection、或不含任何要素时都视为数据不可用，与传输失败同等处理
func Parse(body []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if !strings.EqualFold(head.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%w: unexpected geojson type %q", ErrUnavailable, head.Type)
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: feature collection is empty", ErrUnavailable)
	}
	return fc, nil
}
