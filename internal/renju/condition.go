package renju

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jaminalder/codex-renju/internal/board"
)

// Kind is the shape a placement creates.
type Kind uint8

const (
	UnbrokenThree Kind = iota + 1
	BrokenThree
	StraightFour
	ClosedFour
	BrokenFour
	Five
)

var kindNames = map[Kind]string{
	UnbrokenThree: "unbroken_three",
	BrokenThree:   "broken_three",
	StraightFour:  "straight_four",
	ClosedFour:    "closed_four",
	BrokenFour:    "broken_four",
	Five:          "five",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

func (k Kind) IsThree() bool { return k == UnbrokenThree || k == BrokenThree }

func (k Kind) IsFour() bool { return k == StraightFour || k == ClosedFour || k == BrokenFour }

// Condition is a shape on one line together with the empty point whose
// occupation completes it. Conditions are comparable values.
type Condition struct {
	Kind      Kind
	Direction board.Direction
	Place     board.Point
	stones    [5]board.Point
	n         uint8
}

func newCondition(kind Kind, dir board.Direction, place board.Point, stones []board.Point) Condition {
	c := Condition{Kind: kind, Direction: dir, Place: place, n: uint8(len(stones))}
	copy(c.stones[:], stones)
	return c
}

// Stones returns the span of points forming the shape, in line order. The
// place itself is always among them.
func (c Condition) Stones() []board.Point {
	return slices.Clone(c.stones[:c.n])
}

// Touches reports whether p is one of the condition's stones.
func (c Condition) Touches(p board.Point) bool {
	return slices.Contains(c.stones[:c.n], p)
}

// Compare orders conditions by kind, place, direction and stones.
func (c Condition) Compare(o Condition) int {
	if c.Kind != o.Kind {
		return cmpInt(int(c.Kind), int(o.Kind))
	}
	if r := c.Place.Compare(o.Place); r != 0 {
		return r
	}
	if c.Direction != o.Direction {
		return cmpInt(int(c.Direction), int(o.Direction))
	}
	if c.n != o.n {
		return cmpInt(int(c.n), int(o.n))
	}
	for i := 0; i < int(c.n); i++ {
		if r := c.stones[i].Compare(o.stones[i]); r != 0 {
			return r
		}
	}
	return 0
}

// Format renders the condition in board notation, e.g. "straight_four@G8 horizontal [G8 H8 I8 J8]".
func (c Condition) Format(size int) string {
	names := make([]string, c.n)
	for i, p := range c.stones[:c.n] {
		names[i] = p.Notation(size)
	}
	return fmt.Sprintf("%s@%s %s [%s]", c.Kind, c.Place.Notation(size), c.Direction, strings.Join(names, " "))
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

// Link pairs a three with the companion empty point that, together with the
// three's place, frames the straight four it can become.
type Link struct {
	Three     Condition
	Companion board.Point
}

func (l Link) Compare(o Link) int {
	if r := l.Three.Compare(o.Three); r != 0 {
		return r
	}
	return l.Companion.Compare(o.Companion)
}

// PointSet is a set of intersections. A nil set is empty.
type PointSet map[board.Point]struct{}

func NewPointSet(points ...board.Point) PointSet {
	s := make(PointSet, len(points))
	for _, p := range points {
		s[p] = struct{}{}
	}
	return s
}

func (s PointSet) Has(p board.Point) bool {
	_, ok := s[p]
	return ok
}

func (s PointSet) Add(p board.Point) { s[p] = struct{}{} }

// Sorted returns the members ordered by (x, y).
func (s PointSet) Sorted() []board.Point {
	out := make([]board.Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, board.Point.Compare)
	return out
}

// Result is everything one evaluation finds for one color.
type Result struct {
	// Conditions is sorted and free of duplicates.
	Conditions []Condition
	// Forbidden is only ever non-empty for Black.
	Forbidden PointSet
	// Threes holds every three found with its companion point, including
	// those whose place turned out to be forbidden.
	Threes []Link
}

// IsForbidden reports whether Black may not play p.
func (r Result) IsForbidden(p board.Point) bool { return r.Forbidden.Has(p) }

// At returns the conditions whose place is p.
func (r Result) At(p board.Point) []Condition {
	var out []Condition
	for _, c := range r.Conditions {
		if c.Place == p {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many conditions of kind k were found.
func (r Result) Count(k Kind) int {
	n := 0
	for _, c := range r.Conditions {
		if c.Kind == k {
			n++
		}
	}
	return n
}
