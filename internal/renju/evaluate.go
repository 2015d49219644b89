// Package renju finds the threats a stone placement creates on a Renju board
// and the points Black may not play: overlines, double-fours and double-threes
// as resolved under RIF rule 9.3.
package renju

import (
	"slices"

	"github.com/jaminalder/codex-renju/internal/board"
)

// Evaluate classifies every placement for stone on g.
//
// restrict, when non-nil, limits the four and three search to lines through
// at least one of its points. Fives and overlines are always searched on the
// whole board. Evaluate panics if stone is Empty.
func Evaluate(g *board.Grid, stone board.Stone, restrict PointSet) Result {
	if stone == board.Empty {
		panic("renju: evaluate called with an empty stone")
	}
	s := newScan(g, stone, restrict)
	s.findFives()
	if s.black {
		s.findOverlines()
	}
	s.findFours()
	s.findThrees()
	s.resolveThrees(stone)
	if stone == board.White && len(s.forbidden) > 0 {
		panic("renju: white has forbidden points")
	}
	return s.result()
}

// resolveThrees decides, for each place where Black would make two or more
// threes at once, whether the double-three is forbidden. Forbidden points
// found here are only added once every place has been examined.
func (s *scan) resolveThrees(stone board.Stone) {
	places := make([]board.Point, 0, len(s.threes))
	for p := range s.threes {
		places = append(places, p)
	}
	slices.SortFunc(places, board.Point.Compare)

	doubles := PointSet{}
	for _, k := range places {
		links := sortedLinks(s.threes[k])
		distinct := map[Condition]struct{}{}
		for _, l := range links {
			distinct[l.Three] = struct{}{}
		}
		if s.black && len(distinct) > 1 && s.doubleThreeForbidden(stone, k, links) {
			doubles.Add(k)
			continue
		}
		for c := range distinct {
			s.found[c] = struct{}{}
		}
	}
	for p := range doubles {
		s.forbidden.Add(p)
	}
}

// doubleThreeForbidden applies RIF 9.3. The double-three at k is allowed when
// at most one of its threes can still become a straight four that is itself
// legal: its extension point must not be an overline or double-four (a), and
// must not be a forbidden double-three once k is occupied (b).
func (s *scan) doubleThreeForbidden(stone board.Stone, k board.Point, links []Link) bool {
	allowedFours := 0
	for _, l := range links {
		if !s.forbidden.Has(l.Companion) {
			allowedFours++
		}
	}
	if allowedFours <= 1 {
		return false
	}

	allowedThrees := len(links)
	next := s.grid.Clone()
	if err := next.Set(k, stone); err != nil {
		panic("renju: double-three place off the grid: " + err.Error())
	}
	for _, l := range links {
		sub := Evaluate(next, stone, NewPointSet(k, l.Companion))
		straights := 0
		for _, c := range sub.Conditions {
			if c.Kind == StraightFour && c.Touches(k) && !sub.Forbidden.Has(c.Place) {
				straights++
			}
		}
		if straights > 1 {
			continue
		}
		if sub.Forbidden.Has(l.Companion) {
			allowedThrees--
		}
	}
	return allowedThrees > 1
}

func sortedLinks(set map[Link]struct{}) []Link {
	out := make([]Link, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	slices.SortFunc(out, Link.Compare)
	return out
}

func (s *scan) result() Result {
	r := Result{
		Conditions: make([]Condition, 0, len(s.found)),
		Forbidden:  s.forbidden,
	}
	for c := range s.found {
		r.Conditions = append(r.Conditions, c)
	}
	slices.SortFunc(r.Conditions, Condition.Compare)
	for _, set := range s.threes {
		for l := range set {
			r.Threes = append(r.Threes, l)
		}
	}
	slices.SortFunc(r.Threes, Link.Compare)
	return r
}
