package board

// Direction names a line family.
type Direction uint8

const (
	Horizontal Direction = iota
	Vertical
	// Rising diagonals run from bottom-left to top-right ("/").
	Rising
	// Falling diagonals run from top-left to bottom-right ("\").
	Falling
)

// Directions lists the four line families.
var Directions = [4]Direction{Horizontal, Vertical, Rising, Falling}

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	}
	return "unknown"
}

func (d Direction) step() (dx, dy int) {
	switch d {
	case Horizontal:
		return 1, 0
	case Vertical:
		return 0, 1
	case Rising:
		return 1, -1
	}
	return 1, 1
}

// Line is an edge-to-edge run of intersections in one direction.
type Line struct {
	Direction Direction
	Points    []Point
}

// Contains reports whether p lies on l.
func (l Line) Contains(p Point) bool {
	for _, q := range l.Points {
		if q == p {
			return true
		}
	}
	return false
}

// start walks back from p to the edge the line begins at.
func (g *Grid) start(d Direction, p Point) Point {
	switch d {
	case Horizontal:
		return Pt(0, p.Y)
	case Vertical:
		return Pt(p.X, 0)
	case Rising:
		s := min(p.X, g.size-1-p.Y)
		return Pt(p.X-s, p.Y+s)
	}
	s := min(p.X, p.Y)
	return Pt(p.X-s, p.Y-s)
}

func (g *Grid) walk(d Direction, from Point) Line {
	dx, dy := d.step()
	l := Line{Direction: d}
	for p := from; g.InBounds(p); p = Pt(p.X+dx, p.Y+dy) {
		l.Points = append(l.Points, p)
	}
	return l
}

// Line returns the full line through p in direction d. The result does not
// depend on which point of the line is given.
func (g *Grid) Line(d Direction, p Point) Line {
	if !g.InBounds(p) {
		return Line{Direction: d}
	}
	return g.walk(d, g.start(d, p))
}

// Lines returns every row, column and diagonal of the grid. Each intersection
// belongs to exactly one line per direction.
func (g *Grid) Lines() []Line {
	n := g.size
	out := make([]Line, 0, 6*n)
	for y := 0; y < n; y++ {
		out = append(out, g.walk(Horizontal, Pt(0, y)))
	}
	for x := 0; x < n; x++ {
		out = append(out, g.walk(Vertical, Pt(x, 0)))
	}
	// Rising diagonals start on the left column or the bottom row.
	for y := 0; y < n; y++ {
		out = append(out, g.walk(Rising, Pt(0, y)))
	}
	for x := 1; x < n; x++ {
		out = append(out, g.walk(Rising, Pt(x, n-1)))
	}
	// Falling diagonals start on the left column or the top row.
	for y := 0; y < n; y++ {
		out = append(out, g.walk(Falling, Pt(0, y)))
	}
	for x := 1; x < n; x++ {
		out = append(out, g.walk(Falling, Pt(x, 0)))
	}
	return out
}
