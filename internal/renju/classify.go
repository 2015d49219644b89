package renju

import "github.com/jaminalder/codex-renju/internal/board"

// Class is a cell's relation to the stone being evaluated.
type Class uint8

const (
	Empty Class = iota
	Same
	Opposite
	// Border marks the virtual cells padding each end of a line.
	Border
)

func (c Class) String() string {
	switch c {
	case Same:
		return "same"
	case Opposite:
		return "opposite"
	case Border:
		return "border"
	}
	return "empty"
}

// Cell is one classified intersection of a line.
type Cell struct {
	Class Class
	Point board.Point
}

const padding = 2

// Classify maps every intersection of line relative to stone and pads the
// result with two Border cells on each side.
func Classify(g *board.Grid, stone board.Stone, line board.Line) []Cell {
	if stone == board.Empty {
		panic("renju: classify called with an empty stone")
	}
	out := make([]Cell, 0, len(line.Points)+2*padding)
	for i := 0; i < padding; i++ {
		out = append(out, Cell{Class: Border, Point: board.NullPoint()})
	}
	for _, p := range line.Points {
		c := Cell{Class: Empty, Point: p}
		switch g.At(p) {
		case stone:
			c.Class = Same
		case stone.Opposite():
			c.Class = Opposite
		}
		out = append(out, c)
	}
	for i := 0; i < padding; i++ {
		out = append(out, Cell{Class: Border, Point: board.NullPoint()})
	}
	return out
}

// window is a fixed-width slice of classified cells.
type window []Cell

// is matches w against a pattern, one byte per cell:
//
//	x  Same
//	.  Empty
//	|  anything but Same
//	?  anything
func (w window) is(pattern string) bool {
	if len(w) < len(pattern) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		c := w[i].Class
		switch pattern[i] {
		case 'x':
			if c != Same {
				return false
			}
		case '.':
			if c != Empty {
				return false
			}
		case '|':
			if c == Same {
				return false
			}
		}
	}
	return true
}

func (w window) points(from, to int) []board.Point {
	out := make([]board.Point, 0, to-from)
	for _, c := range w[from:to] {
		out = append(out, c.Point)
	}
	return out
}
