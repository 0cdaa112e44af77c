// Package export serializes committed strokes into SVG.
package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"LocalSketch/internal/state"
)

const (
	// Ink is used for draw strokes without a colour of their own.
	Ink = "#000"
	// Background is the colour erase strokes are painted with.
	Background = "#fff"
)

// StrokeColor returns the colour st is painted with.
func StrokeColor(st state.Stroke) string {
	if st.Tool == state.Erase {
		return Background
	}
	if st.Color == "" {
		return Ink
	}
	return st.Color
}

// SVG returns a width×height SVG document with one path per stroke, in
// order. The output depends only on its arguments.
func SVG(strokes []state.Stroke, width, height float64) string {
	var b strings.Builder
	// strings.Builder never fails.
	_ = WriteSVG(&b, strokes, width, height)
	return b.String()
}

// WriteSVG writes the document produced by SVG to w.
func WriteSVG(w io.Writer, strokes []state.Stroke, width, height float64) error {
	var buf bytes.Buffer
	ws, hs := num(width), num(height)
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="`)
	buf.WriteString(ws)
	buf.WriteString(`" height="`)
	buf.WriteString(hs)
	buf.WriteString(`" viewBox="0 0 `)
	buf.WriteString(ws)
	buf.WriteByte(' ')
	buf.WriteString(hs)
	buf.WriteString(`">`)
	for _, st := range strokes {
		writePath(&buf, st)
	}
	buf.WriteString(`</svg>`)
	_, err := w.Write(buf.Bytes())
	return err
}

func writePath(buf *bytes.Buffer, st state.Stroke) {
	buf.WriteString(`<path d="`)
	buf.WriteString(PathData(st))
	buf.WriteString(`" stroke="`)
	// Writes to a bytes.Buffer cannot fail.
	_ = xml.EscapeText(buf, []byte(StrokeColor(st)))
	buf.WriteString(`" stroke-width="`)
	buf.WriteString(num(st.Width))
	buf.WriteString(`" fill="none" stroke-linecap="round" stroke-linejoin="round" />`)
}

// PathData returns the SVG path commands for st: a move to the first point
// and a line to each following one.
func PathData(st state.Stroke) string {
	var b strings.Builder
	for i, p := range st.Points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(num(p.X))
		b.WriteByte(' ')
		b.WriteString(num(p.Y))
	}
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
