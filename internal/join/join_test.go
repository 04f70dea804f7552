package join

import (
	"testing"

	"india-heatmap/internal/stats"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collection(names ...any) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, n := range names {
		f := geojson.NewFeature(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
		if n != nil {
			f.Properties["NAME_1"] = n
		}
		fc.Append(f)
	}
	return fc
}

func TestResolveIsExactAndCaseSensitive(t *testing.T) {
	tbl, _ := stats.Prepare(stats.Default())
	tests := []struct {
		name  string
		want  float64
		found bool
	}{
		{"Delhi", 11297, true},
		{"Lakshadweep", 2.8, true},
		{"delhi", 0, false},
		{"Delhi ", 0, false},
		{"NCT of Delhi", 0, false},
		{"Orissa", 0, false},
		{"Jammu & Kashmir", 0, false},
		{"", 0, false},
	}
	ix := NewIndex(tbl)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Resolve(tt.name, tbl)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, v)

			v2, ok2 := ix.Resolve(tt.name)
			assert.Equal(t, ok, ok2)
			assert.Equal(t, v, v2)
		})
	}
}

func TestJoinReportsUnmatchedBothWays(t *testing.T) {
	tbl := stats.Table{{Name: "Kerala", Metric: 859}, {Name: "Odisha", Metric: 269}, {Name: "Goa", Metric: 394}}
	fc := collection("Kerala", "Orissa", nil, 42, "Kerala")

	res := Join(fc, "NAME_1", NewIndex(tbl))

	require.Len(t, res.Matches, 5)
	assert.Equal(t, Match{Feature: 0, Name: "Kerala", Metric: 859, Found: true}, res.Matches[0])
	assert.False(t, res.Matches[1].Found)
	assert.False(t, res.Matches[2].Found, "feature without a name property")
	assert.False(t, res.Matches[3].Found, "non-string name property")
	assert.True(t, res.Matches[4].Found)
	assert.Equal(t, 2, res.Matched())
	assert.Equal(t, []string{"Orissa", "", ""}, res.UnmatchedFeatures)
	assert.Equal(t, []string{"Odisha", "Goa"}, res.UnmatchedRows)
}

func TestJoinUsesFirstDuplicateRow(t *testing.T) {
	tbl := stats.Table{{Name: "A", Metric: 1}, {Name: "A", Metric: 2}}
	res := Join(collection("A"), "NAME_1", NewIndex(tbl))
	assert.Equal(t, 1.0, res.Matches[0].Metric)
	assert.Empty(t, res.UnmatchedRows)
}

func TestNearMissesFlagNamingDrift(t *testing.T) {
	tbl := stats.Table{
		{Name: "Jammu and Kashmir", Metric: 297},
		{Name: "Tamil Nadu", Metric: 555},
		{Name: "Puducherry", Metric: 3182},
		{Name: "Odisha", Metric: 269},
	}
	fc := collection("jammu & kashmir", "Tamil  Nádu", "Pondicherry", "Orissa")

	res := Join(fc, "NAME_1", NewIndex(tbl))
	assert.Equal(t, 0, res.Matched(), "near misses must never be matched")
	assert.Equal(t, []NearMiss{
		{Feature: "Tamil  Nádu", Row: "Tamil Nadu"},
		{Feature: "jammu & kashmir", Row: "Jammu and Kashmir"},
	}, res.NearMisses())
}
