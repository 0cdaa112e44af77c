package geom

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointJSON(t *testing.T) {
	data, err := json.Marshal(Pt(1.5, -2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x": 1.5, "y": -2}`, string(data))

	var p Point
	require.NoError(t, json.Unmarshal([]byte(`{"x": 3, "y": 1e2}`), &p))
	assert.Equal(t, Pt(3, 100), p)
}

func TestPointJSONNonFinite(t *testing.T) {
	in := []Point{Pt(math.NaN(), 5), Pt(math.Inf(1), math.Inf(-1))}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x": "NaN", "y": 5}, {"x": "+Inf", "y": "-Inf"}]`, string(data))

	var out []Point
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)
	assert.True(t, math.IsNaN(out[0].X))
	assert.Equal(t, 5.0, out[0].Y)
	assert.True(t, math.IsInf(out[1].X, 1))
	assert.True(t, math.IsInf(out[1].Y, -1))
}

func TestNumberRejectsOtherStrings(t *testing.T) {
	var n Number
	assert.Error(t, json.Unmarshal([]byte(`"12"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`"wide"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
}
