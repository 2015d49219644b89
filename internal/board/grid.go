package board

import (
	"errors"
	"fmt"
	"strings"
)

// Stone is the content of one intersection.
type Stone uint8

const (
	Empty Stone = iota
	Black
	White
)

// Opposite returns the other color. Empty maps to itself.
func (s Stone) Opposite() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (s Stone) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// ParseStone accepts "black"/"b"/"x" and "white"/"w"/"o".
func ParseStone(s string) (Stone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b", "x":
		return Black, nil
	case "white", "w", "o":
		return White, nil
	case "empty", "e", ".":
		return Empty, nil
	}
	return Empty, fmt.Errorf("%w: %q", ErrStone, s)
}

// Errors returned by grid operations.
var (
	ErrSize        = errors.New("invalid board size")
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("point occupied")
	ErrNotation    = errors.New("invalid point notation")
	ErrStone       = errors.New("invalid stone")
)

const (
	MinSize     = 5
	MaxSize     = 26
	DefaultSize = 15
)

// Grid is a square board, stored row-major.
type Grid struct {
	size     int
	cells    []Stone
	comments map[Point]string
}

// New returns an empty size x size grid.
func New(size int) (*Grid, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}
	return &Grid{size: size, cells: make([]Stone, size*size)}, nil
}

func (g *Grid) Size() int { return g.size }

// InBounds reports whether p is a real point on the grid.
func (g *Grid) InBounds(p Point) bool {
	return !p.IsNull() && p.X >= 0 && p.Y >= 0 && p.X < g.size && p.Y < g.size
}

// At returns the stone at p. Points off the grid read as Empty.
func (g *Grid) At(p Point) Stone {
	if !g.InBounds(p) {
		return Empty
	}
	return g.cells[p.Y*g.size+p.X]
}

// Set overwrites the stone at p.
func (g *Grid) Set(p Point, s Stone) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	g.cells[p.Y*g.size+p.X] = s
	return nil
}

// Place puts s on an empty intersection.
func (g *Grid) Place(p Point, s Stone) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	if g.At(p) != Empty {
		return fmt.Errorf("%w: %s", ErrOccupied, p.Notation(g.size))
	}
	g.cells[p.Y*g.size+p.X] = s
	return nil
}

// Clone returns a deep copy, comments included.
func (g *Grid) Clone() *Grid {
	cp := &Grid{size: g.size, cells: make([]Stone, len(g.cells))}
	copy(cp.cells, g.cells)
	if len(g.comments) > 0 {
		cp.comments = make(map[Point]string, len(g.comments))
		for k, v := range g.comments {
			cp.comments[k] = v
		}
	}
	return cp
}

// Points lists every intersection, row by row from the top.
func (g *Grid) Points() []Point {
	out := make([]Point, 0, len(g.cells))
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			out = append(out, Pt(x, y))
		}
	}
	return out
}

// Count returns the number of black and white stones.
func (g *Grid) Count() (black, white int) {
	for _, c := range g.cells {
		switch c {
		case Black:
			black++
		case White:
			white++
		}
	}
	return black, white
}

// Comment returns the annotation attached to p, if any.
func (g *Grid) Comment(p Point) (string, bool) {
	c, ok := g.comments[p]
	return c, ok
}

// SetComment attaches free-form text to p. An empty text removes it.
func (g *Grid) SetComment(p Point, text string) {
	if text == "" {
		delete(g.comments, p)
		return
	}
	if g.comments == nil {
		g.comments = make(map[Point]string)
	}
	g.comments[p] = text
}

// Comments returns a copy of all annotations.
func (g *Grid) Comments() map[Point]string {
	out := make(map[Point]string, len(g.comments))
	for k, v := range g.comments {
		out[k] = v
	}
	return out
}

func stoneSymbol(s Stone) byte {
	switch s {
	case Black:
		return 'x'
	case White:
		return 'o'
	}
	return '.'
}

// MarshalText encodes the stones as rows of '.', 'x' and 'o' separated by '/'.
// Comments are not part of the encoding.
func (g *Grid) MarshalText() ([]byte, error) {
	var b strings.Builder
	b.Grow(g.size * (g.size + 1))
	for y := 0; y < g.size; y++ {
		if y > 0 {
			b.WriteByte('/')
		}
		for x := 0; x < g.size; x++ {
			b.WriteByte(stoneSymbol(g.cells[y*g.size+x]))
		}
	}
	return []byte(b.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (g *Grid) UnmarshalText(text []byte) error {
	rows := strings.Split(string(text), "/")
	size := len(rows)
	if size < MinSize || size > MaxSize {
		return fmt.Errorf("%w: %d rows", ErrSize, size)
	}
	cells := make([]Stone, size*size)
	for y, row := range rows {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells", ErrSize, y, len(row))
		}
		for x := 0; x < size; x++ {
			switch row[x] {
			case '.':
			case 'x':
				cells[y*size+x] = Black
			case 'o':
				cells[y*size+x] = White
			default:
				return fmt.Errorf("%w: %q at row %d", ErrStone, row[x], y)
			}
		}
	}
	g.size = size
	g.cells = cells
	g.comments = nil
	return nil
}

// String draws the board with row numbers on the left and column letters below.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.size; y++ {
		fmt.Fprintf(&b, "%2d ", g.size-y)
		for x := 0; x < g.size; x++ {
			sym := stoneSymbol(g.cells[y*g.size+x])
			switch sym {
			case 'x':
				sym = 'X'
			case 'o':
				sym = 'O'
			}
			b.WriteByte(sym)
			if x < g.size-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("   ")
	for x := 0; x < g.size; x++ {
		b.WriteByte(byte('A' + x))
		if x < g.size-1 {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('\n')
	return b.String()
}
