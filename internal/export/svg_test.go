package export

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalSketch/internal/geom"
	"LocalSketch/internal/state"
)

const header = `<svg xmlns="http://www.w3.org/2000/svg" width="300" height="200" viewBox="0 0 300 200">`

func TestSVGEmpty(t *testing.T) {
	assert.Equal(t, header+`</svg>`, SVG(nil, 300, 200))
}

func TestSVGPaths(t *testing.T) {
	strokes := []state.Stroke{
		{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}, Tool: state.Draw, Width: 3},
		{Points: []geom.Point{geom.Pt(1.5, 2), geom.Pt(3, 4.25), geom.Pt(-5, 6)}, Tool: state.Draw, Width: 2, Color: "#FF3B30"},
		{Points: []geom.Point{geom.Pt(5, 5), geom.Pt(6, 6)}, Tool: state.Erase, Width: 20, Color: "#FF3B30"},
	}
	want := header +
		`<path d="M 0 0 L 10 0" stroke="#000" stroke-width="3" fill="none" stroke-linecap="round" stroke-linejoin="round" />` +
		`<path d="M 1.5 2 L 3 4.25 L -5 6" stroke="#FF3B30" stroke-width="2" fill="none" stroke-linecap="round" stroke-linejoin="round" />` +
		`<path d="M 5 5 L 6 6" stroke="#fff" stroke-width="20" fill="none" stroke-linecap="round" stroke-linejoin="round" />` +
		`</svg>`
	assert.Equal(t, want, SVG(strokes, 300, 200))
}

func TestSVGOnePathPerStrokeInOrder(t *testing.T) {
	for n := 0; n < 6; n++ {
		strokes := make([]state.Stroke, n)
		for i := range strokes {
			strokes[i] = state.Stroke{Points: []geom.Point{geom.Pt(float64(i), 0), geom.Pt(float64(i), 1)}, Width: 1}
		}
		out := SVG(strokes, 10, 10)
		require.Equal(t, n, strings.Count(out, "<path "))

		last := -1
		for i := range strokes {
			idx := strings.Index(out, `d="`+PathData(strokes[i])+`"`)
			require.Greater(t, idx, last, "path %d out of order", i)
			last = idx
		}
	}
}

func TestSVGDeterministic(t *testing.T) {
	strokes := []state.Stroke{
		{Points: []geom.Point{geom.Pt(0.1, 0.2), geom.Pt(1e-7, 12345.678)}, Width: 0.5},
	}
	assert.Equal(t, SVG(strokes, 640, 480), SVG(strokes, 640, 480))
}

func TestSVGEscapesColor(t *testing.T) {
	st := state.Stroke{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(1, 1)}, Color: `red" onload="x`}
	out := SVG([]state.Stroke{st}, 1, 1)
	assert.NotContains(t, out, `onload="x"`)
	assert.Contains(t, out, `stroke="red&#34; onload=&#34;x"`)
}

func TestSVGAcceptsOddNumbers(t *testing.T) {
	st := state.Stroke{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(1, 1)}, Width: math.NaN()}
	assert.Contains(t, SVG([]state.Stroke{st}, 1, 1), `stroke-width="NaN"`)
	st.Width = -2
	assert.Contains(t, SVG([]state.Stroke{st}, 1, 1), `stroke-width="-2"`)
}

func TestStrokeColor(t *testing.T) {
	assert.Equal(t, Ink, StrokeColor(state.Stroke{}))
	assert.Equal(t, "#007AFF", StrokeColor(state.Stroke{Color: "#007AFF"}))
	assert.Equal(t, Background, StrokeColor(state.Stroke{Tool: state.Erase, Color: "#007AFF"}))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSVGError(t *testing.T) {
	err := WriteSVG(failingWriter{}, nil, 1, 1)
	assert.EqualError(t, err, "disk full")
}
