package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is an intersection on the board. The zero value is the null point,
// used as a sentinel beyond the board edges; use Pt for real coordinates.
type Point struct {
	X, Y int
	real bool
}

// Pt returns the real point (x, y).
func Pt(x, y int) Point { return Point{X: x, Y: y, real: true} }

// NullPoint returns the border sentinel.
func NullPoint() Point { return Point{} }

// IsNull reports whether p is the border sentinel.
func (p Point) IsNull() bool { return !p.real }

// Compare orders points by (x, y). The null point sorts before every real one.
func (p Point) Compare(q Point) int {
	switch {
	case !p.real && !q.real:
		return 0
	case !p.real:
		return -1
	case !q.real:
		return 1
	}
	if p.X != q.X {
		return cmpInt(p.X, q.X)
	}
	return cmpInt(p.Y, q.Y)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Notation renders p as column letter plus row number, e.g. "H8" on a 15x15
// board. Rows count up from the bottom edge.
func (p Point) Notation(size int) string {
	if !p.real {
		return "-"
	}
	return string(rune('A'+p.X)) + strconv.Itoa(size-p.Y)
}

func (p Point) String() string {
	if !p.real {
		return "(null)"
	}
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// ParsePoint parses column-letter/row-number notation for a board of the given size.
func ParsePoint(s string, size int) (Point, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Point{}, fmt.Errorf("%w: %q", ErrNotation, s)
	}
	col := s[0]
	if col < 'A' || col > 'Z' {
		return Point{}, fmt.Errorf("%w: bad column in %q", ErrNotation, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return Point{}, fmt.Errorf("%w: bad row in %q", ErrNotation, s)
	}
	p := Pt(int(col-'A'), size-row)
	if p.X >= size || p.Y < 0 || p.Y >= size {
		return Point{}, fmt.Errorf("%w: %s on %dx%d", ErrOutOfBounds, s, size, size)
	}
	return p, nil
}
