// Package script reads line-oriented gesture scripts and plays them on a
// board. A script has one command per line:
//
//	tool draw|erase
//	width 4
//	eraser 30
//	color #FF3B30
//	down 10 20
//	move 12 24
//	up
//	undo
//	redo
//	clear
//
// Blank lines and lines starting with # are skipped.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"LocalSketch/internal/board"
	"LocalSketch/internal/geom"
	"LocalSketch/internal/state"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("syntax error")

// Command is one parsed script line.
type Command struct {
	Line  int
	Name  string
	Point geom.Point
	Value float64
	Tool  state.Tool
	Color string
}

// arity is the number of arguments each command takes.
var arity = map[string]int{
	"tool": 1, "width": 1, "eraser": 1, "color": 1,
	"down": 2, "move": 2,
	"up": 0, "undo": 0, "redo": 0, "clear": 0,
}

// Parse reads every command from r.
func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command
	err := Scan(r, func(c Command) error {
		cmds = append(cmds, c)
		return nil
	})
	return cmds, err
}

// Scan parses r line by line and hands each command to fn as soon as it is
// read, which lets a script arrive over a pipe. Scanning stops at the first
// error from the reader, the parser or fn.
func Scan(r io.Reader, fn func(Command) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cmd, err := parseLine(line, text)
		if err != nil {
			return err
		}
		if err := fn(cmd); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", line+1, err)
	}
	return nil
}

func parseLine(line int, text string) (Command, error) {
	fields := strings.Fields(text)
	cmd := Command{Line: line, Name: strings.ToLower(fields[0])}
	args := fields[1:]

	n, ok := arity[cmd.Name]
	if !ok {
		return cmd, fmt.Errorf("line %d: %w: unknown command %q", line, ErrSyntax, fields[0])
	}
	if len(args) != n {
		return cmd, fmt.Errorf("line %d: %w: %s takes %d argument(s), got %d", line, ErrSyntax, cmd.Name, n, len(args))
	}

	var err error
	switch cmd.Name {
	case "tool":
		cmd.Tool, err = state.ParseTool(strings.ToLower(args[0]))
	case "width", "eraser":
		cmd.Value, err = strconv.ParseFloat(args[0], 64)
	case "color":
		cmd.Color = args[0]
	case "down", "move":
		cmd.Point, err = parsePoint(args[0], args[1])
	}
	if err != nil {
		return cmd, fmt.Errorf("line %d: %w: %v", line, ErrSyntax, err)
	}
	return cmd, nil
}

func parsePoint(xs, ys string) (geom.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(x, y), nil
}

// Apply performs a single command on b.
func Apply(b *board.Board, c Command) {
	switch c.Name {
	case "tool":
		b.SetTool(c.Tool)
	case "width":
		b.SetStrokeWidth(c.Value)
	case "eraser":
		b.SetEraserSize(c.Value)
	case "color":
		b.SetColor(c.Color)
	case "down":
		b.GestureStart(c.Point)
	case "move":
		b.GestureUpdate(c.Point)
	case "up":
		b.GestureEnd()
	case "undo":
		b.Undo()
	case "redo":
		b.Redo()
	case "clear":
		b.ClearAll()
	}
}

// Play parses r and applies each command to b as it is read. Commands
// before a syntax error have already been applied when Play returns.
func Play(b *board.Board, r io.Reader) (int, error) {
	n := 0
	err := Scan(r, func(c Command) error {
		Apply(b, c)
		n++
		return nil
	})
	return n, err
}
